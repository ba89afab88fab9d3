package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/errors"
	"github.com/getlumos/lumos-action/internal/policy"
	"github.com/getlumos/lumos-action/internal/tui"
	"github.com/getlumos/lumos-action/internal/ux"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Manage the drift policy file",
	Long: `Create and inspect the drift policy that decides when drift fails a run.

Subcommands:
  new      Create a policy file with defaults
  resolve  Show how the policy applies to the current CI event

Examples:
  lumos-action policy new --strict
  GITHUB_EVENT_NAME=push GITHUB_REF_NAME=main lumos-action policy resolve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var policyNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a policy file with defaults",
	Long: `Create a drift policy file. The default policy fails on drift everywhere
and accepts no override labels.

With --strict, drift is blocking only on main and release branches, and
pull requests can be unblocked with the drift-approved label. With
--interactive, each setting is prompted for, starting from those values.`,
	RunE: runPolicyNew,
}

var policyResolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Show the effective policy for the current CI event",
	Long: `Load the policy file, read the GitHub Actions event from the environment
and print the resulting fail-on-drift and override decision inputs.`,
	RunE: runPolicyResolve,
}

func init() {
	policyCmd.AddCommand(policyNewCmd)
	policyCmd.AddCommand(policyResolveCmd)

	policyNewCmd.Flags().String("output", policy.DefaultPath, "output path for the policy file")
	policyNewCmd.Flags().Bool("strict", false, "block drift only on protected branches, allow label overrides")
	policyNewCmd.Flags().Bool("force", false, "overwrite an existing policy file")
	policyNewCmd.Flags().BoolP("interactive", "i", false, "answer prompts instead of using defaults")

	policyResolveCmd.Flags().String("file", policy.DefaultPath, "policy file")
	policyResolveCmd.Flags().StringP("format", "f", "yaml", "output format (json, yaml)")

	rootCmd.AddCommand(policyCmd)
}

func runPolicyNew(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	strict, _ := cmd.Flags().GetBool("strict")
	force, _ := cmd.Flags().GetBool("force")
	interactive, _ := cmd.Flags().GetBool("interactive")

	if _, err := os.Stat(outputPath); err == nil && !force {
		return errors.New(errors.ErrCodeUsage, fmt.Sprintf("policy file already exists: %s", outputPath)).
			WithSuggestion("Pass --force to overwrite it")
	}

	pol := policy.DefaultPolicy()
	if strict {
		pol.FailOnDrift = false
		pol.StrictBranches = []string{"main", "release/**"}
		pol.Override.Labels = []string{"drift-approved"}
	}
	if interactive {
		if !tui.ShouldPrompt() {
			return errors.New(errors.ErrCodeUsage, "--interactive needs a terminal outside CI")
		}
		if err := tui.RunPolicyWizard(pol); err != nil {
			return err
		}
		if err := pol.Validate(); err != nil {
			return errors.NewPolicyInvalidError(outputPath, err)
		}
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.NewFileWriteError(outputPath, err)
		}
	}
	if err := policy.SavePolicy(pol, outputPath); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created policy file: %s\n", outputPath)
	fmt.Fprintf(out, "  fail_on_drift:   %v\n", pol.FailOnDrift)
	fmt.Fprintf(out, "  strict_branches: %v\n", pol.StrictBranches)
	fmt.Fprintf(out, "  override labels: %v\n", pol.Override.Labels)
	return nil
}

// resolvedPolicy is what policy resolve prints
type resolvedPolicy struct {
	Event        policy.Event       `json:"event" yaml:"event"`
	TargetBranch string             `json:"target_branch" yaml:"target_branch"`
	StrictBranch bool               `json:"strict_branch" yaml:"strict_branch"`
	Config       drift.PolicyConfig `json:"config" yaml:"config"`
}

func runPolicyResolve(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	format, _ := cmd.Flags().GetString("format")

	pol, err := policy.LoadPolicyOrDefault(path, cmd.Flags().Changed("file"))
	if err != nil {
		return err
	}
	event, err := policy.EventFromEnv(os.Getenv)
	if err != nil {
		return err
	}

	formatter, err := ux.NewFormatter(format, &ux.FormatterOptions{Writer: cmd.OutOrStdout()})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUsage, "invalid --format", err)
	}

	return formatter.Format(resolvedPolicy{
		Event:        event,
		TargetBranch: event.TargetBranch(),
		StrictBranch: pol.IsStrictBranch(event.TargetBranch()),
		Config:       pol.Resolve(event),
	})
}
