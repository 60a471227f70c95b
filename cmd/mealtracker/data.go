package main

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataUserID int64
	exportOut  string
	importFile string

	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write a user's food log as CSV",
		RunE:  runExport,
	}

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "Import a JSON log export for a user",
		RunE:  runImport,
	}
)

func init() {
	exportCmd.Flags().Int64Var(&dataUserID, "user", 1, "user id")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default stdout)")

	importCmd.Flags().Int64Var(&dataUserID, "user", 1, "user id")
	importCmd.Flags().StringVar(&importFile, "file", "", "JSON log export to read")
	_ = importCmd.MarkFlagRequired("file")
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := openStore(cfg, nil, false)
	if err != nil {
		return err
	}
	defer st.Close()
	svc, err := newServices(cfg, st, nil)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}
	if err := svc.dashboard.WriteExport(cmd.Context(), dataUserID, w); err != nil {
		return fmt.Errorf("export user %d: %w", dataUserID, err)
	}
	if exportOut != "" {
		log.Infof("exported user %d to %s", dataUserID, exportOut)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(importFile)
	if err != nil {
		return fmt.Errorf("open %s: %w", importFile, err)
	}
	defer f.Close()

	st, err := openStore(cfg, nil, false)
	if err != nil {
		return err
	}
	defer st.Close()
	svc, err := newServices(cfg, st, nil)
	if err != nil {
		return err
	}

	n, err := svc.dashboard.LogImport(cmd.Context(), dataUserID, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", importFile, err)
	}
	log.Infof("imported %d entries for user %d", n, dataUserID)
	return nil
}
