package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Create, update, delete and list records",
	Long: `Offline-aware record commands. When the backend is unreachable, writes
are applied to the local store, queued, and reported with "offline": true.

Resources: phones, customers, swaps, sales, repairs.`,
}

var recordCreateCmd = &cobra.Command{
	Use:   "create <resource>",
	Short: "Create a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordCreate,
}

var recordUpdateCmd = &cobra.Command{
	Use:   "update <resource> <id>",
	Short: "Replace a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordUpdate,
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete <resource> <id>",
	Short: "Delete a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runRecordDelete,
}

var recordListCmd = &cobra.Command{
	Use:   "list <resource>",
	Short: "List records, refreshing the local mirror when online",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordList,
}

func init() {
	recordCreateCmd.Flags().String("data", "{}", "record fields as a JSON object")
	recordUpdateCmd.Flags().String("data", "{}", "record fields as a JSON object")
	recordListCmd.Flags().Bool("json", false, "print records as JSON")

	recordCmd.AddCommand(recordCreateCmd, recordUpdateCmd, recordDeleteCmd, recordListCmd)
	rootCmd.AddCommand(recordCmd)
}

func runRecordCreate(cmd *cobra.Command, args []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	resource, err := domain.ParseResource(args[0])
	if err != nil {
		return err
	}
	data, err := dataFlag(cmd)
	if err != nil {
		return err
	}

	out, err := r.Records.Create(commandContext(cmd), resource, data)
	if err != nil {
		return fmt.Errorf("create failed: %w", err)
	}
	return printJSON(cmd, out)
}

func runRecordUpdate(cmd *cobra.Command, args []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	resource, id, err := resourceAndID(args)
	if err != nil {
		return err
	}
	data, err := dataFlag(cmd)
	if err != nil {
		return err
	}

	out, err := r.Records.Update(commandContext(cmd), resource, id, data)
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	return printJSON(cmd, out)
}

func runRecordDelete(cmd *cobra.Command, args []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	resource, id, err := resourceAndID(args)
	if err != nil {
		return err
	}

	out, err := r.Records.Delete(commandContext(cmd), resource, id)
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	if out["offline"] == true {
		cmd.Printf("Delete of %s #%d queued (offline).\n", resource, id)
		return nil
	}
	cmd.Printf("Deleted %s #%d.\n", resource, id)
	return nil
}

func runRecordList(cmd *cobra.Command, args []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	resource, err := domain.ParseResource(args[0])
	if err != nil {
		return err
	}

	rows, err := r.Records.GetAll(commandContext(cmd), resource)
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return printJSON(cmd, rows)
	}

	if len(rows) == 0 {
		cmd.Printf("No %s.\n", resource)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATE\tFIELDS")
	for _, row := range rows {
		state := "synced"
		if row["offline"] == true {
			state = "pending"
		}
		fmt.Fprintf(w, "%v\t%s\t%s\n", row["id"], state, summarise(row))
	}
	return w.Flush()
}

func dataFlag(cmd *cobra.Command) (domain.Fields, error) {
	raw, _ := cmd.Flags().GetString("data")
	var data domain.Fields
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("%w: --data must be a JSON object: %v", domain.ErrInvalidInput, err)
	}
	if data == nil {
		data = domain.Fields{}
	}
	return data, nil
}

func resourceAndID(args []string) (domain.Resource, int64, error) {
	resource, err := domain.ParseResource(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id == 0 {
		return "", 0, fmt.Errorf("%w: invalid id %q", domain.ErrInvalidInput, args[1])
	}
	return resource, id, nil
}

// summarise renders the non-bookkeeping fields as sorted key=value pairs.
func summarise(row domain.Fields) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		if k == "id" || k == "offline" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, row[k]))
	}
	return strings.Join(parts, " ")
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
