package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redfield/usiop/internal/actor"
	"github.com/redfield/usiop/internal/clearance"
	"github.com/redfield/usiop/internal/guard"
)

var (
	checkPaths     stackPaths
	checkEmployee  string
	checkClearance int
	checkLocation  string
	checkAccess    bool
	checkFormat    string
)

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVar(&checkEmployee, "employee", "", "Roster employee id (requires --roster)")
	checkCmd.Flags().StringVar(&checkPaths.roster, "roster", "", "Path to roster YAML")
	checkCmd.Flags().IntVar(&checkClearance, "clearance", 1, "Ad-hoc clearance level when no employee is given")
	checkCmd.Flags().StringVar(&checkLocation, "location", "", "Ad-hoc facility when no employee is given")
	checkCmd.Flags().BoolVar(&checkAccess, "facility-access", false, "Ad-hoc facility-access flag when no employee is given")
	checkCmd.Flags().StringVar(&checkPaths.policy, "policy", "", "Path to clearance table YAML")
	checkCmd.Flags().StringVar(&checkPaths.vocab, "vocab", "", "Path to vocabulary YAML")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", "text", "Output format (text|json)")
}

var checkCmd = &cobra.Command{
	Use:   "check <query...>",
	Short: "Evaluate a query against the clearance guard without asking it",
	Long: "Runs the guard decision for a query and prints the outcome.\n" +
		"Nothing is retrieved, generated, or persisted.\n\n" +
		"Exit code 0 if the query would be allowed, 1 if denied.",
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	var a actor.Actor
	if checkEmployee != "" {
		roster, err := checkPaths.openRoster()
		if err != nil {
			return err
		}
		var ok bool
		a, ok = roster.Lookup(checkEmployee)
		if !ok {
			return fmt.Errorf("unknown employee id %q", checkEmployee)
		}
	} else {
		a = actor.Actor{
			ID:             "adhoc",
			Clearance:      checkClearance,
			Location:       checkLocation,
			FacilityAccess: checkAccess,
		}
		a.Normalize()
	}

	table, err := clearance.LoadTable(checkPaths.policy)
	if err != nil {
		return fmt.Errorf("failed to load policy table: %w", err)
	}
	vocab, err := guard.LoadVocabulary(checkPaths.vocab)
	if err != nil {
		return fmt.Errorf("failed to load vocabulary: %w", err)
	}

	res := guard.New(table, vocab).Check(a, query)

	switch checkFormat {
	case "json":
		out, _ := json.MarshalIndent(map[string]any{
			"allowed":        res.Allowed,
			"category":       string(res.Category),
			"keyword":        res.Keyword,
			"required_level": res.RequiredLevel,
			"actual_level":   res.ActualLevel,
			"ref_id":         res.RefID,
		}, "", "  ")
		fmt.Println(string(out))
	default:
		if res.Allowed {
			fmt.Printf("ALLOWED (SCL-%d)\n", res.ActualLevel)
		} else {
			fmt.Printf("DENIED: %s (keyword %q", res.Category, res.Keyword)
			if res.Category == guard.CategoryClearance {
				fmt.Printf(", requires SCL-%d", res.RequiredLevel)
			}
			fmt.Printf(") ref=%s\n", res.RefID)
		}
	}

	if !res.Allowed {
		os.Exit(1)
	}
	return nil
}
