package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/swapsync/swapsync-cli/internal/core/domain"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and manage queued writes",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List writes waiting to be replayed",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queueAbandonedCmd = &cobra.Command{
	Use:   "abandoned",
	Short: "List writes that exhausted their retries",
	Args:  cobra.NoArgs,
	RunE:  runQueueAbandoned,
}

var queueRetryCmd = &cobra.Command{
	Use:   "retry <operation-id>",
	Short: "Move an abandoned write back to the pending queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueRetry,
}

var queueDiscardCmd = &cobra.Command{
	Use:   "discard <operation-id>",
	Short: "Permanently drop an abandoned write",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueDiscard,
}

func init() {
	queueCmd.AddCommand(queueListCmd, queueAbandonedCmd, queueRetryCmd, queueDiscardCmd)
	rootCmd.AddCommand(queueCmd)
}

func runQueueList(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	ops, err := r.Queue.ListPending(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list queue: %w", err)
	}
	if len(ops) == 0 {
		cmd.Println("No pending changes.")
		return nil
	}
	return printOperations(cmd, ops)
}

func runQueueAbandoned(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	ops, err := r.Queue.ListAbandoned(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list abandoned changes: %w", err)
	}
	if len(ops) == 0 {
		cmd.Println("No abandoned changes.")
		return nil
	}
	return printOperations(cmd, ops)
}

func runQueueRetry(cmd *cobra.Command, args []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	id, err := parseOperationID(args[0])
	if err != nil {
		return err
	}
	if err := r.Queue.Requeue(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to requeue operation %d: %w", id, err)
	}
	cmd.Printf("Operation %d requeued.\n", id)
	return nil
}

func runQueueDiscard(cmd *cobra.Command, args []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	id, err := parseOperationID(args[0])
	if err != nil {
		return err
	}
	if err := r.Queue.Discard(commandContext(cmd), id); err != nil {
		return fmt.Errorf("failed to discard operation %d: %w", id, err)
	}
	cmd.Printf("Operation %d discarded.\n", id)
	return nil
}

func printOperations(cmd *cobra.Command, ops []domain.PendingOperation) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tRESOURCE\tRECORD\tRETRIES\tQUEUED\tLAST ERROR")
	for _, op := range ops {
		record := "-"
		if op.RecordID != 0 {
			record = strconv.FormatInt(op.RecordID, 10)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			op.ID, op.Type, op.Resource, record, op.Retries,
			op.Timestamp.Local().Format(time.DateTime), op.LastError)
	}
	return w.Flush()
}

func parseOperationID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid operation id %q", domain.ErrInvalidInput, raw)
	}
	return id, nil
}
