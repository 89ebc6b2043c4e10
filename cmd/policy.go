package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/mcp-k8s-agent/internal/policy"
)

// newPolicyCmd creates the command group for inspecting the policy offline.
func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect the policy enforced by mcp-k8s-agent",
		Long: `Inspect the effective policy without starting the server.

'policy show' prints the tables, 'policy check' evaluates a single
request against them exactly as the server would.`,
	}
	cmd.AddCommand(newPolicyShowCmd())
	cmd.AddCommand(newPolicyCheckCmd())
	return cmd
}

func policyFileFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVar(target, "policy-file", "", "YAML file that tightens the built-in policy (can also be set via MCP_POLICY_FILE env var)")
}

func loadPolicyTables(cmd *cobra.Command, path string) (*policy.Tables, error) {
	if !cmd.Flags().Changed("policy-file") {
		loadEnvIfEmpty(&path, "MCP_POLICY_FILE")
	}
	tables, err := policy.LoadTables(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}
	return tables, nil
}

func newPolicyShowCmd() *cobra.Command {
	var policyFile string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective policy tables as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadPolicyTables(cmd, policyFile)
			if err != nil {
				return err
			}
			return writeYAML(cmd.OutOrStdout(), tables)
		},
	}
	policyFileFlag(cmd, &policyFile)
	return cmd
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// checkResult is the printed outcome of 'policy check'.
type checkResult struct {
	Allowed       bool        `yaml:"allowed"`
	PolicyVersion string      `yaml:"policyVersion"`
	Denial        string      `yaml:"denial,omitempty"`
	Message       string      `yaml:"message,omitempty"`
	Intent        interface{} `yaml:"intent,omitempty"`
}

func newPolicyCheckCmd() *cobra.Command {
	var (
		policyFile string
		tool       string
		verb       string
		kind       string
		namespace  string
		name       string
		approved   bool
		rawArgs    []string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate one request against the policy",
		Long: `Evaluate one request against the policy and print the decision.

Arguments are given as key=value pairs. Values that parse as JSON numbers or
booleans are passed as such, so --arg replicas=3 behaves like a real tool call.

Exits with a non-zero status when the request is denied.`,
		Example: `  mcp-k8s-agent policy check --verb get --kind Pod --namespace default --name web
  mcp-k8s-agent policy check --verb patch --namespace default --name web --approved \
    --arg plural=deployments --arg action=scale --arg replicas=3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadPolicyTables(cmd, policyFile)
			if err != nil {
				return err
			}
			arguments, err := parseCheckArguments(rawArgs)
			if err != nil {
				return err
			}

			rc := policy.NewRequestContext(tool, verb,
				policy.WithKind(kind),
				policy.WithNamespace(namespace),
				policy.WithName(name),
				policy.WithApproval(approved),
				policy.WithArguments(arguments),
			)
			decision := policy.NewGate(tables).Evaluate(rc)

			result := checkResult{
				Allowed:       decision.Allowed,
				PolicyVersion: decision.PolicyVersion,
				Intent:        decision.Intent,
			}
			if decision.Denial != nil {
				result.Denial = string(decision.Denial.Kind)
				result.Message = decision.Denial.Message
			}
			if err := writeYAML(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			return decision.Err()
		},
	}

	policyFileFlag(cmd, &policyFile)
	cmd.Flags().StringVar(&tool, "tool", "policy-check", "Tool name recorded in the request")
	cmd.Flags().StringVar(&verb, "verb", "", "Verb to check: list, get, events, pod_logs, delete or patch")
	cmd.Flags().StringVar(&kind, "kind", "", "Resource kind, e.g. Deployment")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Target namespace")
	cmd.Flags().StringVar(&name, "name", "", "Target object name")
	cmd.Flags().BoolVar(&approved, "approved", false, "Mark the request as explicitly approved")
	cmd.Flags().StringArrayVar(&rawArgs, "arg", nil, "Tool argument as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("verb")

	return cmd
}

// parseCheckArguments turns key=value pairs into a tool argument map.
// Numbers become float64 and true/false become booleans, matching what a
// JSON-RPC client would send.
func parseCheckArguments(pairs []string) (map[string]interface{}, error) {
	args := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q: expected key=value", pair)
		}
		args[key] = parseArgumentValue(value)
	}
	return args, nil
}

func parseArgumentValue(value string) interface{} {
	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	var n json.Number
	if err := json.Unmarshal([]byte(value), &n); err == nil {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	return value
}
