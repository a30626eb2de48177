// Package project handles the local layer of a bioscope project: root
// discovery, the configuration document under
// .bioscope/config/bioscope.yaml, and well-known project paths.
//
// # Configuration Document
//
// The local configuration carries the annotation_validation section:
//
//	annotation_validation:
//	  enabled: true
//	  minimum_required_fields: [name, description]
//	  field_validation:
//	    name: {type: string, min_length: 1}
//	  remote_config:
//	    url: https://cluster.example.com/validation.yaml
//	    cache_duration: 3600
//	    fallback_to_local: true
//
// Absence of the file is not an error: a fresh project gets an empty,
// enabled configuration. The document is only written back when a CLI
// command explicitly mutates it.
package project
