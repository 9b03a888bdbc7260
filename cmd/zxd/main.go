// Package main provides the zxd CLI.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"zxd/action"
	"zxd/internal/library"
	"zxd/internal/store"
	"zxd/proof"
	"zxd/rules"
	"zxd/zxgraph"
)

const rulesDir = "rules"

// Version is the current zxd CLI version
var Version = "0.3.1"

var rootCmd = &cobra.Command{
	Use:     "zxd",
	Short:   "zxd - ZX-calculus diagram rewriting and proofs",
	Long:    `zxd applies rewrite rules to ZX-calculus diagrams and records each application as a step in a replayable proof.`,
	Version: Version,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a zxd workspace in the current directory",
	RunE:  runInit,
}

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Rule library commands",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules from the library and the workspace rule files",
	RunE:  runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <rule-file>",
	Short: "Validate a rule file and store it in the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesAdd,
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <rule-file-or-name>",
	Short: "Check that a rule is well formed and preserves semantics",
	Long: `Checks a custom rule:
  - both sides must have the same numbers of inputs and outputs
  - a concrete rule must have equal semantics on both sides
  - a parametrized rule may only use left-hand-side variables on the right,
    and its left-hand-side phases must be linear in each variable

The argument is a rule file path, or the name or id of a stored rule.`,
	Args: cobra.ExactArgs(1),
	RunE: runRulesCheck,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show <rule-name-or-id>",
	Short: "Print a stored rule document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

var rulesRmCmd = &cobra.Command{
	Use:   "rm <rule-name-or-id>",
	Short: "Remove a rule from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesRm,
}

var proofCmd = &cobra.Command{
	Use:   "proof",
	Short: "Proof history commands",
}

var proofNewCmd = &cobra.Command{
	Use:   "new <diagram-file> <proof-file>",
	Short: "Start a proof from a diagram",
	Long: `Reads a diagram JSON file and writes a fresh one-row proof bundle.

Proof files ending in ` + library.CompressedProofExt + ` are zstd-compressed.`,
	Args: cobra.ExactArgs(2),
	RunE: runProofNew,
}

var proofShowCmd = &cobra.Command{
	Use:   "show <proof-file>",
	Short: "List the steps of a proof",
	Args:  cobra.ExactArgs(1),
	RunE:  runProofShow,
}

var proofRenameCmd = &cobra.Command{
	Use:   "rename <proof-file> <step> <name>",
	Short: "Rename a proof step",
	Args:  cobra.ExactArgs(3),
	RunE:  runProofRename,
}

var proofGroupCmd = &cobra.Command{
	Use:   "group <proof-file> <first-step> <last-step>",
	Short: "Collapse a run of steps into one grouped step",
	Args:  cobra.ExactArgs(3),
	RunE:  runProofGroup,
}

var proofUngroupCmd = &cobra.Command{
	Use:   "ungroup <proof-file> <step>",
	Short: "Expand a grouped step back into its parts",
	Args:  cobra.ExactArgs(2),
	RunE:  runProofUngroup,
}

var proofSaveCmd = &cobra.Command{
	Use:   "save <proof-file> <name>",
	Short: "Store a proof in the library",
	Args:  cobra.ExactArgs(2),
	RunE:  runProofSave,
}

var applyCmd = &cobra.Command{
	Use:   "apply <proof-file>",
	Short: "Apply a rewrite action to the last graph of a proof",
	Long: `Applies a rewrite action to the final graph of a proof and appends the
result as a new step. The action is a builtin (fuse, remove_id, remove_loops,
color_change) or a custom rule addressed as custom/<name>.

The selection names the vertices the action may touch:

  zxd apply lemma.zxp --action fuse --select 2,3
  zxd apply lemma.zxp --action custom/bialgebra --select 1,2,5,6`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

var simplifyCmd = &cobra.Command{
	Use:   "simplify <proof-file>",
	Short: "Fuse spiders and remove identities until nothing changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimplify,
}

var actionsCmd = &cobra.Command{
	Use:   "actions [proof-file]",
	Short: "List rewrite actions and whether they match the current graph",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runActions,
}

var (
	applyAction    string
	applySelect    string
	actionsSelect  string
	rulesAddAsName string
)

func init() {
	applyCmd.Flags().StringVar(&applyAction, "action", "", "Action id to apply (required)")
	applyCmd.Flags().StringVar(&applySelect, "select", "", "Comma-separated vertex ids the action may touch")
	applyCmd.MarkFlagRequired("action")

	actionsCmd.Flags().StringVar(&actionsSelect, "select", "", "Comma-separated vertex ids to probe against")

	rulesAddCmd.Flags().StringVar(&rulesAddAsName, "as", "", "Store under this name instead of the rule's own")

	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesRmCmd)

	proofCmd.AddCommand(proofNewCmd)
	proofCmd.AddCommand(proofShowCmd)
	proofCmd.AddCommand(proofRenameCmd)
	proofCmd.AddCommand(proofGroupCmd)
	proofCmd.AddCommand(proofUngroupCmd)
	proofCmd.AddCommand(proofSaveCmd)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(proofCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(simplifyCmd)
	rootCmd.AddCommand(actionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// shortID safely truncates an ID string to 12 characters.
func shortID(s string) string {
	if len(s) >= 12 {
		return s[:12]
	}
	return s
}

func openWorkspace() (library.Config, *store.DB, error) {
	cfg, err := library.LoadConfigOrDefault(library.ConfigFileName)
	if err != nil {
		return library.Config{}, nil, err
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return library.Config{}, nil, err
	}
	return cfg, db, nil
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(library.ConfigFileName); err == nil {
		return fmt.Errorf("%s already exists", library.ConfigFileName)
	}
	cfg := library.DefaultConfig()
	if err := library.SaveConfig(library.ConfigFileName, cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(rulesDir, 0755); err != nil {
		return fmt.Errorf("creating %s directory: %w", rulesDir, err)
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Printf("Initialized zxd workspace (%s, %s)\n", library.ConfigFileName, cfg.DBPath)
	return nil
}

func runRulesList(cmd *cobra.Command, args []string) error {
	cfg, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	entries, err := db.ListRules()
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		fmt.Println("Library:")
		for _, e := range entries {
			fmt.Printf("  %s  %s\n", shortID(e.ID), e.Name)
		}
	}

	files, err := library.DiscoverRuleFiles(".", cfg.RulePaths)
	if err != nil {
		return err
	}
	if len(files) > 0 {
		fmt.Println("Workspace files:")
		for _, f := range files {
			r, err := library.LoadRuleFile(f)
			if err != nil {
				fmt.Printf("  %s  (unreadable: %v)\n", f, err)
				continue
			}
			fmt.Printf("  %s  %s\n", f, r.Name)
		}
	}
	if len(entries) == 0 && len(files) == 0 {
		fmt.Println("No rules found. Add one with 'zxd rules add <file>'.")
	}
	return nil
}

// resolveRule loads a rule from a file path if one exists, otherwise from the
// library by name or id.
func resolveRule(db *store.DB, fileOrName string) (*rules.CustomRule, error) {
	if _, err := os.Stat(fileOrName); err == nil {
		return library.LoadRuleFile(fileOrName)
	}
	e, err := db.GetRule(fileOrName)
	if err != nil {
		return nil, err
	}
	r, err := rules.FromJSON(e.Document)
	if err != nil {
		return nil, fmt.Errorf("stored rule %q: %w", e.Name, err)
	}
	return r, nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	_, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := library.LoadRuleFile(args[0])
	if err != nil {
		return err
	}
	if err := r.Check(); err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	name := r.Name
	if rulesAddAsName != "" {
		name = rulesAddAsName
	}
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding rule: %w", err)
	}
	id, err := db.PutRule(name, doc)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %s as %s\n", name, shortID(id))
	return nil
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	_, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	r, err := resolveRule(db, args[0])
	if err != nil {
		return err
	}
	if err := r.Check(); err != nil {
		return fmt.Errorf("rule %q: %w", r.Name, err)
	}
	fmt.Printf("Rule %q is valid\n", r.Name)
	return nil
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	_, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	e, err := db.GetRule(args[0])
	if err != nil {
		return err
	}
	fmt.Println(string(e.Document))
	return nil
}

func runRulesRm(cmd *cobra.Command, args []string) error {
	_, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteRule(args[0]); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}

func runProofNew(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading diagram: %w", err)
	}
	g, err := zxgraph.FromJSON(data)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	m := proof.NewModel(g)
	if err := library.SaveProof(args[1], m); err != nil {
		return err
	}
	fmt.Printf("Started proof %s (%d vertices)\n", args[1], g.NumVertices())
	return nil
}

func runProofShow(cmd *cobra.Command, args []string) error {
	m, err := library.LoadProof(args[0])
	if err != nil {
		return err
	}
	graphs := m.Graphs()
	for row := 0; row < m.RowCount(); row++ {
		g := graphs[row]
		marker := " "
		if row > 0 {
			if step, err := m.Step(row - 1); err == nil && len(step.GroupedRewrites) > 0 {
				marker = "+"
			}
		}
		fmt.Printf("%3d %s %-40s %3d vertices %3d edges\n",
			row, marker, m.DisplayName(row), g.NumVertices(), g.NumEdges())
	}
	return nil
}

func parseStep(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("step %q is not a number", s)
	}
	return n, nil
}

func runProofRename(cmd *cobra.Command, args []string) error {
	m, err := library.LoadProof(args[0])
	if err != nil {
		return err
	}
	step, err := parseStep(args[1])
	if err != nil {
		return err
	}
	if err := m.RenameStep(step, args[2]); err != nil {
		return err
	}
	return library.SaveProof(args[0], m)
}

func runProofGroup(cmd *cobra.Command, args []string) error {
	m, err := library.LoadProof(args[0])
	if err != nil {
		return err
	}
	first, err := parseStep(args[1])
	if err != nil {
		return err
	}
	last, err := parseStep(args[2])
	if err != nil {
		return err
	}
	if err := m.GroupSteps(first, last); err != nil {
		return err
	}
	return library.SaveProof(args[0], m)
}

func runProofUngroup(cmd *cobra.Command, args []string) error {
	m, err := library.LoadProof(args[0])
	if err != nil {
		return err
	}
	step, err := parseStep(args[1])
	if err != nil {
		return err
	}
	if err := m.UngroupSteps(step); err != nil {
		return err
	}
	return library.SaveProof(args[0], m)
}

func runProofSave(cmd *cobra.Command, args []string) error {
	_, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := library.LoadProof(args[0])
	if err != nil {
		return err
	}
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding proof: %w", err)
	}
	id, err := db.PutProof(args[1], doc)
	if err != nil {
		return err
	}
	fmt.Printf("Stored %s as %s\n", args[1], shortID(id))
	return nil
}

// buildRegistry assembles the builtin actions plus every rule from the
// library and the workspace rule files.
func buildRegistry(cfg library.Config, db *store.DB) (*action.Registry, error) {
	reg := action.NewRegistry()

	entries, err := db.ListRules()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		r, err := rules.FromJSON(e.Document)
		if err != nil {
			return nil, fmt.Errorf("stored rule %q: %w", e.Name, err)
		}
		if err := reg.RegisterCustomRule(r); err != nil {
			return nil, err
		}
	}

	fileRules, err := library.LoadRules(".", cfg.RulePaths)
	if err != nil {
		if len(fileRules) == 0 {
			return nil, err
		}
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	for _, r := range fileRules {
		// A stored copy of the same rule wins.
		if _, ok := reg.Get("custom/" + r.Name); ok {
			continue
		}
		if err := reg.RegisterCustomRule(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func parseSelection(g *zxgraph.Graph, spec string) (action.Selection, error) {
	if spec == "" {
		return action.SelectionFromVertices(g, g.Vertices()), nil
	}
	var verts []int
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return action.Selection{}, fmt.Errorf("vertex id %q is not a number", part)
		}
		if !g.HasVertex(v) {
			return action.Selection{}, fmt.Errorf("vertex %d is not in the graph", v)
		}
		verts = append(verts, v)
	}
	return action.SelectionFromVertices(g, verts), nil
}

func runApply(cmd *cobra.Command, args []string) error {
	cfg, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := library.LoadProof(args[0])
	if err != nil {
		return err
	}
	reg, err := buildRegistry(cfg, db)
	if err != nil {
		return err
	}
	act, ok := reg.Get(applyAction)
	if !ok {
		return fmt.Errorf("unknown action %q", applyAction)
	}

	g, err := m.GetGraph(m.RowCount() - 1)
	if err != nil {
		return err
	}
	sel, err := parseSelection(g, applySelect)
	if err != nil {
		return err
	}
	result, err := act.DoRewrite(m, g, sel)
	if err != nil {
		return err
	}
	if err := library.SaveProof(args[0], m); err != nil {
		return err
	}
	fmt.Printf("Applied %s: %d vertices, %d edges (step %d)\n",
		act.Name, result.NumVertices(), result.NumEdges(), m.NumSteps())
	return nil
}

func runSimplify(cmd *cobra.Command, args []string) error {
	_, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := library.LoadProof(args[0])
	if err != nil {
		return err
	}
	reg := action.NewRegistry()
	applied := 0
	for {
		g, err := m.GetGraph(m.RowCount() - 1)
		if err != nil {
			return err
		}
		sel := action.SelectionFromVertices(g, g.Vertices())
		progressed := false
		for _, id := range []string{"fuse", "remove_loops", "remove_id"} {
			act, _ := reg.Get(id)
			if !act.UpdateActive(g, sel) {
				continue
			}
			if _, err := act.DoRewrite(m, g, sel); err != nil {
				return err
			}
			applied++
			progressed = true
			break
		}
		if !progressed {
			break
		}
	}
	if applied == 0 {
		fmt.Println("Already fully simplified")
		return nil
	}
	if err := library.SaveProof(args[0], m); err != nil {
		return err
	}
	g, _ := m.GetGraph(m.RowCount() - 1)
	fmt.Printf("Simplified in %d steps: %d vertices, %d edges\n",
		applied, g.NumVertices(), g.NumEdges())
	return nil
}

func runActions(cmd *cobra.Command, args []string) error {
	cfg, db, err := openWorkspace()
	if err != nil {
		return err
	}
	defer db.Close()

	var g *zxgraph.Graph
	if len(args) > 0 {
		m, err := library.LoadProof(args[0])
		if err != nil {
			return err
		}
		g, err = m.GetGraph(m.RowCount() - 1)
		if err != nil {
			return err
		}
	} else {
		g = zxgraph.NewGraph()
	}
	reg, err := buildRegistry(cfg, db)
	if err != nil {
		return err
	}
	sel, err := parseSelection(g, actionsSelect)
	if err != nil {
		return err
	}
	enabled := make(map[string]bool)
	for _, id := range reg.EnabledIDs(g, sel) {
		enabled[id] = true
	}
	acts := reg.Actions()
	sort.Slice(acts, func(i, j int) bool { return acts[i].ID < acts[j].ID })
	for _, a := range acts {
		mark := " "
		if enabled[a.ID] {
			mark = "*"
		}
		fmt.Printf("%s %-24s %s\n", mark, a.ID, a.Tooltip)
	}
	return nil
}
