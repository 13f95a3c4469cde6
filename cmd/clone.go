package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/getyour/gyadmin/internal/ioclone"
	"github.com/getyour/gyadmin/internal/iodb"
	"github.com/getyour/gyadmin/pkg/clone"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getCloneCmd returns the clone command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getCloneCmd() *cobra.Command {
	var req clone.Request
	var batch bool

	cloneCmd := &cobra.Command{
		Use:   "clone",
		Short: "Clone a user record set between environments",
		Long: `Clone copies one applicant's complete record set from a source
environment into a target environment.

This command:
  1. Resolves the user in the source by email
  2. Assigns the template account's password hash (the real password
     hash never leaves its environment)
  3. Replaces the phone number with a placeholder
  4. Deduplicates addresses in the target by content hash
  5. Writes all dependent and history tables under one transaction

Clones into a production-class target are always archived, and
production record sets are never overwritten. Overwriting in
non-interactive mode requires the explicit --overwrite flag.

Examples:
  gyadmin clone --source getyour_prod --target getyour_dev \
      --source-email person@example.org --email tester@example.org
  gyadmin clone --source getyour_dev --target getyour_local --batch \
      --source-email person@example.org --email tester@example.org \
      --local-path ./scratch.sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Interactive = !batch
			return runClone(cmd, args, req)
		},
	}

	cloneCmd.Flags().StringVarP(&req.SourceProfile, "source", "s",
		"", "source environment profile, e.g. getyour_prod")
	cloneCmd.Flags().StringVarP(&req.TargetProfile, "target", "t",
		"", "target environment profile, e.g. getyour_dev")
	cloneCmd.Flags().StringVar(&req.SourceEmail, "source-email",
		"", "email of the user to clone")
	cloneCmd.Flags().StringVarP(&req.TargetEmail, "email", "e",
		"", "email the cloned user gets in the target")
	cloneCmd.Flags().BoolVar(&req.Overwrite, "overwrite",
		false, "replace an existing target record set (non-prod only)")
	cloneCmd.Flags().StringVar(&req.LocalPath, "local-path",
		"", "SQLite file backing a _local profile")
	cloneCmd.Flags().BoolVar(&batch, "batch",
		false, "disable prompts; missing values become errors")

	return cloneCmd
}

func runClone(_ *cobra.Command, _ []string, req clone.Request) error {
	ctx := context.Background()

	var err error
	if req, err = completeCloneRequest(req); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	provider := iodb.NewProvider(cfg)
	cloner := ioclone.New(cfg, provider, askYesNo)

	outcome, err := cloner.Clone(ctx, req)
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info("User <em>%s</em> cloned from %s to %s",
		outcome.Email, req.SourceProfile, req.TargetProfile)
	gn.Info("Target user id: <em>%d</em>", outcome.UserID)
	if outcome.NewIdentity {
		gn.Info("The target assigned a new identifier; " +
			"the source identifier was taken.")
	}
	if outcome.Overwritten {
		gn.Info("The previous record set was replaced.")
	}
	if outcome.PasswordNote != "" {
		gn.Info("Log in with the password of <em>%s</em>.",
			outcome.PasswordNote)
	}
	return nil
}

// completeCloneRequest prompts for missing request fields in
// interactive mode; in batch mode missing fields are errors.
func completeCloneRequest(req clone.Request) (clone.Request, error) {
	fields := []struct {
		val    *string
		prompt string
	}{
		{&req.SourceProfile, "Source profile (e.g. getyour_prod)"},
		{&req.TargetProfile, "Target profile (e.g. getyour_dev)"},
		{&req.SourceEmail, "Email of the user to clone"},
		{&req.TargetEmail, "New email for the cloned user"},
	}

	for _, f := range fields {
		if *f.val != "" {
			continue
		}
		if !req.Interactive {
			return req, fmt.Errorf("%s is required in batch mode",
				strings.SplitN(f.prompt, " (", 2)[0])
		}
		fmt.Printf("%s: ", f.prompt)
		reader := bufio.NewReader(os.Stdin)
		response, err := reader.ReadString('\n')
		if err != nil {
			gn.Warn("Failed to read user input")
			return req, err
		}
		*f.val = strings.TrimSpace(response)
		if *f.val == "" {
			return req, fmt.Errorf("%s cannot be empty",
				strings.SplitN(f.prompt, " (", 2)[0])
		}
	}
	return req, nil
}

// askYesNo asks a yes/no question on the terminal. Anything but
// yes/y declines.
func askYesNo(question string) bool {
	fmt.Printf("\n%s (yes/no): ", question)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		gn.Warn("Failed to read user input")
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y"
}
