package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tsh/internal/model"
)

var jobDeleteYes bool

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Manage jobs",
}

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs",
	Args:  cobra.NoArgs,
	RunE:  runJobList,
}

var jobCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Register a new job",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobCreate,
}

var jobUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Select the job (and with --convention, the week convention) to work on",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobUse,
}

var jobDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a job and every week recorded for it",
	Args:  cobra.ExactArgs(1),
	RunE:  runJobDelete,
}

func init() {
	jobDeleteCmd.Flags().BoolVarP(&jobDeleteYes, "yes", "y", false, "Do not ask for confirmation")

	jobCmd.AddCommand(jobListCmd)
	jobCmd.AddCommand(jobCreateCmd)
	jobCmd.AddCommand(jobUseCmd)
	jobCmd.AddCommand(jobDeleteCmd)
}

func runJobList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	jobs, err := a.store.Jobs.List(cmd.Context())
	if err != nil {
		return storageError(err)
	}
	if len(jobs) == 0 {
		fmt.Fprintln(a.out, "No jobs yet. Create one with 'tsh job create <name>'.")
		return nil
	}
	for _, j := range jobs {
		marker := " "
		if j == a.state.ActiveJob {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %s\n", marker, j)
	}
	return nil
}

func runJobCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name, err := a.store.Jobs.Create(cmd.Context(), args[0])
	if errors.Is(err, model.ErrEmptyJobName) {
		return userError("%v", err)
	}
	if err != nil {
		return storageError(err)
	}

	if a.state.ActiveJob == "" {
		a.state.ActiveJob = name
		if err := a.saveState(); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "Created job %q.\n", name)
	return nil
}

func runJobUse(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name, err := a.requireJob(cmd.Context(), strings.TrimSpace(args[0]))
	if err != nil {
		return err
	}
	a.state.ActiveJob = name
	if flagConvention != "" {
		conv, err := a.convention()
		if err != nil {
			return err
		}
		a.state.Convention = &conv
	}
	if err := a.saveState(); err != nil {
		return err
	}

	conv, _ := a.convention()
	fmt.Fprintf(a.out, "Working on %q (%s).\n", name, conv.Label())
	return nil
}

func runJobDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.TrimSpace(args[0])
	if !jobDeleteYes {
		ok, err := confirm(a.in, a.out, fmt.Sprintf("Delete job %q and all of its weeks?", name))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
	}

	jobRows, weekRows, err := a.store.Jobs.Delete(cmd.Context(), name)
	if err != nil {
		return storageError(err)
	}
	if err := a.drafts.EvictJob(name); err != nil {
		return storageError(err)
	}
	if a.state.ActiveJob == name {
		a.state.ActiveJob = ""
		if err := a.saveState(); err != nil {
			return err
		}
	}

	if jobRows == 0 && weekRows == 0 {
		fmt.Fprintf(a.out, "No job named %q.\n", name)
		return nil
	}
	fmt.Fprintf(a.out, "Deleted job %q (%d week rows removed).\n", name, weekRows)
	return nil
}

// confirm asks a y/N question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
