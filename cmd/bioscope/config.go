package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bioscope-hq/bioscope/pkg/annotation"
	"bioscope-hq/bioscope/pkg/cli"
	"bioscope-hq/bioscope/pkg/project"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage project validation configuration",
}

var setValidationFlags struct {
	field        string
	fieldType    string
	minLength    int
	requiredKeys string
	format       string
	pattern      string
}

var setValidationCmd = &cobra.Command{
	Use:   "set-validation",
	Short: "Add a required field and optional validation rules",
	Long: `Add a field to the minimum required fields and optionally attach
validation rules to it.

Examples:
  # Require the field 'name' with a non-empty string value
  bioscope config set-validation --field name --type string --min-length 1

  # Require 'creator' to be an object containing a 'name' key
  bioscope config set-validation --field creator --type object --required-keys name

  # Require 'dateCreated' to be an ISO date
  bioscope config set-validation --field dateCreated --type string --format date`,
	RunE: runSetValidation,
}

var removeValidationFlags struct {
	field string
}

var removeValidationCmd = &cobra.Command{
	Use:   "remove-validation",
	Short: "Remove a field from the validation requirements",
	RunE:  runRemoveValidation,
}

var toggleValidationFlags struct {
	enabled bool
}

var toggleValidationCmd = &cobra.Command{
	Use:   "toggle-validation",
	Short: "Enable or disable annotation validation",
	RunE:  runToggleValidation,
}

var showValidationCmd = &cobra.Command{
	Use:   "show-validation",
	Short: "Show the effective validation configuration",
	Long: `Show the effective validation configuration after merging the local
layer with the remote policy, if one is configured. Use --no-remote to
inspect the local layer alone.`,
	RunE: runShowValidation,
}

func init() {
	rootCmd.AddCommand(configCmd)

	setValidationCmd.Flags().StringVarP(&setValidationFlags.field, "field", "f", "", "field name to require (required)")
	setValidationCmd.Flags().StringVarP(&setValidationFlags.fieldType, "type", "t", "", "expected type: string, object, array, number, boolean")
	setValidationCmd.Flags().IntVar(&setValidationFlags.minLength, "min-length", -1, "minimum length for string/array fields")
	setValidationCmd.Flags().StringVar(&setValidationFlags.requiredKeys, "required-keys", "", "comma-separated required keys for object fields")
	setValidationCmd.Flags().StringVar(&setValidationFlags.format, "format", "", "string format constraint (date)")
	setValidationCmd.Flags().StringVar(&setValidationFlags.pattern, "pattern", "", "regular expression the full string must match")
	_ = setValidationCmd.MarkFlagRequired("field")
	configCmd.AddCommand(setValidationCmd)

	removeValidationCmd.Flags().StringVarP(&removeValidationFlags.field, "field", "f", "", "field name to remove (required)")
	_ = removeValidationCmd.MarkFlagRequired("field")
	configCmd.AddCommand(removeValidationCmd)

	toggleValidationCmd.Flags().BoolVar(&toggleValidationFlags.enabled, "enabled", true, "enable (true) or disable (false) validation")
	configCmd.AddCommand(toggleValidationCmd)

	configCmd.AddCommand(showValidationCmd)
}

func runSetValidation(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	cfg, err := project.Load(root)
	if err != nil {
		return cli.NewCommandError("set-validation", err)
	}
	settings := &cfg.AnnotationValidation

	field := setValidationFlags.field
	if !containsField(settings.MinimumRequiredFields, field) {
		settings.MinimumRequiredFields = append(settings.MinimumRequiredFields, field)
		fmt.Fprintf(cmd.OutOrStdout(), "Added %q to required fields\n", field)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Field %q is already required\n", field)
	}

	if setValidationFlags.fieldType != "" {
		rule := annotation.Rule{
			Type:    annotation.FieldType(setValidationFlags.fieldType),
			Format:  setValidationFlags.format,
			Pattern: setValidationFlags.pattern,
		}
		if setValidationFlags.minLength >= 0 {
			n := setValidationFlags.minLength
			rule.MinLength = &n
		}
		if setValidationFlags.requiredKeys != "" {
			for _, key := range strings.Split(setValidationFlags.requiredKeys, ",") {
				if key = strings.TrimSpace(key); key != "" {
					rule.RequiredKeys = append(rule.RequiredKeys, key)
				}
			}
		}

		// Reject contradictory rules before they reach the config file.
		if err := rule.Check(field); err != nil {
			return cli.NewCommandError("set-validation", err)
		}

		if settings.FieldValidation == nil {
			settings.FieldValidation = make(map[string]annotation.Rule)
		}
		settings.FieldValidation[field] = rule
		fmt.Fprintf(cmd.OutOrStdout(), "Set validation rules for %q\n", field)
	}

	if err := project.Save(root, cfg); err != nil {
		return cli.NewCommandError("set-validation", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration updated")
	return nil
}

func runRemoveValidation(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	cfg, err := project.Load(root)
	if err != nil {
		return cli.NewCommandError("remove-validation", err)
	}
	settings := &cfg.AnnotationValidation

	field := removeValidationFlags.field
	if containsField(settings.MinimumRequiredFields, field) {
		kept := settings.MinimumRequiredFields[:0]
		for _, f := range settings.MinimumRequiredFields {
			if f != field {
				kept = append(kept, f)
			}
		}
		settings.MinimumRequiredFields = kept
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from required fields\n", field)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Field %q is not in required fields\n", field)
	}

	if _, ok := settings.FieldValidation[field]; ok {
		delete(settings.FieldValidation, field)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed validation rules for %q\n", field)
	}

	if err := project.Save(root, cfg); err != nil {
		return cli.NewCommandError("remove-validation", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration updated")
	return nil
}

func runToggleValidation(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	cfg, err := project.Load(root)
	if err != nil {
		return cli.NewCommandError("toggle-validation", err)
	}

	enabled := toggleValidationFlags.enabled
	cfg.AnnotationValidation.Enabled = &enabled

	if err := project.Save(root, cfg); err != nil {
		return cli.NewCommandError("toggle-validation", err)
	}

	word := "enabled"
	if !enabled {
		word = "disabled"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Annotation validation %s\n", word)
	return nil
}

func runShowValidation(cmd *cobra.Command, args []string) error {
	root, err := findProjectRoot()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}

	res, closer, err := newResolver(root, logger)
	if err != nil {
		return err
	}
	defer closer()

	result, err := res.Resolve(context.Background(), root)
	if err != nil {
		return err
	}

	for _, warning := range result.Warnings {
		fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", warning)
	}
	cli.RenderConfig(cmd.OutOrStdout(), result.Config)
	return nil
}

func containsField(fields []string, field string) bool {
	for _, f := range fields {
		if f == field {
			return true
		}
	}
	return false
}
