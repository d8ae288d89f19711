package zipcrack

import (
	"fmt"
	"strings"

	"github.com/redactyl/zipcrack/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgOutput string
	cfgForce  bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init [archive]",
		Short: "Generate a .zipcrack.yml from the current flags",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigInit,
	}
	cfgCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&cfgOutput, "file", ".zipcrack.yml", "config file to write")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	addSearchFlags(initCmd.Flags())

	showCmd := &cobra.Command{
		Use:   "show [archive]",
		Short: "Print the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigShow,
	}
	cfgCmd.AddCommand(showCmd)
	addSearchFlags(showCmd.Flags())
}

func toFileConfig(st settings) config.FileConfig {
	sc := st.search
	members := strings.Join(sc.Members, ",")
	fc := config.FileConfig{
		Archive:   &sc.ArchivePath,
		Output:    &sc.OutputDir,
		Alphabet:  &sc.Alphabet,
		MinLength: &sc.MinLength,
		MaxLength: &sc.MaxLength,
		LogLevel:  &st.logLevel,
	}
	if members != "" {
		fc.Members = &members
	}
	if st.noColor {
		fc.NoColor = &st.noColor
	}
	if st.logJSON {
		fc.LogJSON = &st.logJSON
	}
	if st.history || st.historyPath != "" {
		hc := &config.HistoryConfig{}
		if st.history {
			hc.Enabled = &st.history
		}
		if st.historyPath != "" {
			hc.Path = &st.historyPath
		}
		fc.History = hc
	}
	return fc
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	st, err := resolve(cmd, args)
	if err != nil {
		return err
	}
	if err := config.WriteFile(cfgOutput, toFileConfig(st), cfgForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgOutput)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	st, err := resolve(cmd, args)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(toFileConfig(st))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}
