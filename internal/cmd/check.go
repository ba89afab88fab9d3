package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/getlumos/lumos-action/internal/artifact"
	"github.com/getlumos/lumos-action/internal/ci"
	"github.com/getlumos/lumos-action/internal/drift"
	"github.com/getlumos/lumos-action/internal/errors"
	"github.com/getlumos/lumos-action/internal/gate"
	"github.com/getlumos/lumos-action/internal/generate"
	"github.com/getlumos/lumos-action/internal/log"
	"github.com/getlumos/lumos-action/internal/policy"
	"github.com/getlumos/lumos-action/internal/schema"
	"github.com/getlumos/lumos-action/internal/ux"
	"github.com/getlumos/lumos-action/internal/version"
)

// defaultSchemaPattern is used when neither --schema nor the policy file names schemas
const defaultSchemaPattern = "**/*.lumos"

// newCheckCommand builds the check command with its own flag set
func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Regenerate code from schemas and fail on drift",
		Long: `Regenerate Rust and TypeScript code for every matched schema and compare
it with the committed generated files.

Schema patterns come from --schema (repeatable, comma or newline separated),
then the policy file, then "` + defaultSchemaPattern + `".

Exit codes:
  0 - No drift, or drift allowed by policy or override
  1 - Schema generation failed
  2 - No schemas matched
  3 - Invalid policy file
  4 - Drift detected and blocked
  7 - Code generator or filesystem unavailable`,
		Example: `  lumos-action check --schema "schemas/**/*.lumos" --fail-on-drift
  lumos-action check --schema programs/*/schema.lumos --format json --sarif drift.sarif`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCheck,
	}

	cmd.Flags().StringArray("schema", nil, "schema glob pattern (repeatable)")
	cmd.Flags().Bool("fail-on-drift", true, "fail the run when drift is detected")
	cmd.Flags().Bool("override", false, "accept detected drift for this run")
	cmd.Flags().String("policy", policy.DefaultPath, "drift policy file, relative to --root")
	cmd.Flags().String("root", "", "repository root schema patterns are resolved against")
	cmd.Flags().String("generator", "", "lumos binary used for code generation")
	cmd.Flags().Duration("timeout", 0, "per-schema generation timeout (0 disables)")
	cmd.Flags().Int("workers", 0, "schemas generated in parallel (0 uses all CPUs)")
	cmd.Flags().StringP("format", "f", "text", "report format (text, json, yaml)")
	cmd.Flags().Bool("no-color", false, "disable colored text output")
	cmd.Flags().String("sarif", "", "write a SARIF report to this file")
	cmd.Flags().String("github-output", "", "step output file (default $GITHUB_OUTPUT)")
	return cmd
}

func init() {
	rootCmd.AddCommand(newCheckCommand())
}

// checkSettings is the merged result of policy file, CI context and flags
type checkSettings struct {
	root     string
	policy   *policy.Policy
	event    policy.Event
	options  gate.Options
	format   string
	noColor  bool
	sarif    string
	ghOutput string
}

func loadCheckSettings(cmd *cobra.Command, getenv func(string) string) (*checkSettings, error) {
	flags := cmd.Flags()

	root, _ := flags.GetString("root")
	policyPath, _ := flags.GetString("policy")
	if root != "" && !filepath.IsAbs(policyPath) {
		policyPath = filepath.Join(root, policyPath)
	}
	pol, err := policy.LoadPolicyOrDefault(policyPath, flags.Changed("policy"))
	if err != nil {
		return nil, err
	}

	if flags.Changed("fail-on-drift") {
		pol.FailOnDrift, _ = flags.GetBool("fail-on-drift")
	}
	if flags.Changed("generator") {
		pol.Generator.Binary, _ = flags.GetString("generator")
	}
	if flags.Changed("timeout") {
		pol.Generator.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("workers") {
		pol.Workers, _ = flags.GetInt("workers")
	}
	if err := pol.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeUsage, "invalid flag value", err)
	}

	event, err := policy.EventFromEnv(getenv)
	if err != nil {
		return nil, err
	}

	rawPatterns, _ := flags.GetStringArray("schema")
	patterns := schema.SplitPatterns(rawPatterns)
	if len(patterns) == 0 {
		patterns = pol.Schemas
	}
	if len(patterns) == 0 {
		patterns = []string{defaultSchemaPattern}
	}

	cfg := pol.Resolve(event)
	if override, _ := flags.GetBool("override"); override {
		cfg.OverrideGranted = true
	}

	s := &checkSettings{
		root:   root,
		policy: pol,
		event:  event,
		options: gate.Options{
			SchemaGlobs:     patterns,
			FailOnDrift:     cfg.FailOnDrift,
			OverrideGranted: cfg.OverrideGranted,
			IsPullRequest:   cfg.IsPullRequest,
			Workers:         pol.Workers,
		},
	}
	s.format, _ = flags.GetString("format")
	s.noColor, _ = flags.GetBool("no-color")
	s.sarif, _ = flags.GetString("sarif")
	s.ghOutput, _ = flags.GetString("github-output")
	if s.ghOutput == "" {
		s.ghOutput = getenv("GITHUB_OUTPUT")
	}
	return s, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	settings, err := loadCheckSettings(cmd, os.Getenv)
	if err != nil {
		return err
	}

	formatter, err := ux.NewFormatter(settings.format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: settings.noColor,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeUsage, "invalid --format", err)
	}

	logger := log.DefaultLogger().With("event", settings.event.Name, "branch", settings.event.TargetBranch())

	gen := generate.NewExec(settings.policy.Generator.Binary, settings.policy.Generator.Timeout)
	gen.Logger = logger
	deps := gate.Deps{
		Resolver:  schema.NewResolver(settings.root),
		Generator: gen,
		Reader:    artifact.NewFS(settings.root, artifact.Layout{OutputDirs: settings.policy.OutputDirs}),
		Logger:    logger,
	}

	report, err := gate.Run(cmd.Context(), settings.options, deps)
	if err != nil {
		return err
	}

	if err := publish(cmd, settings, formatter, report); err != nil {
		return err
	}

	return verdict(cmd, report)
}

// publish writes the report to stdout, the SARIF file and the step outputs
func publish(cmd *cobra.Command, s *checkSettings, formatter ux.Formatter, report *drift.Report) error {
	if err := formatter.Format(report); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if s.sarif != "" {
		if err := drift.SaveSARIF(report.ToSARIF(version.Version, s.root), s.sarif); err != nil {
			return err
		}
		log.DefaultLogger().Info("SARIF report written", "path", s.sarif)
	}

	if s.ghOutput != "" {
		if err := ci.WriteOutputs(s.ghOutput, ci.ReportOutputs(report)); err != nil {
			return err
		}
	}
	return nil
}

// verdict maps a failed decision to the error that sets the exit status
func verdict(cmd *cobra.Command, report *drift.Report) error {
	if !report.Failed() {
		if report.DriftDetected {
			fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", report.Decision.Reason)
		}
		return nil
	}

	if report.Counts.GenerationError > 0 {
		return errors.NewGenerationFailedError(report.FailedSchemas())
	}

	if report.DiffSummary != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", report.DiffSummary)
	}
	return errors.NewDriftDetectedError(report.Counts.Drifted())
}
