package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/internmatch/internal/advisor"
	"github.com/spigell/internmatch/internal/catalog"
	"github.com/spigell/internmatch/internal/matching"
)

const (
	PromptYes                 = "Yes"
	PromptNo                  = "No"
	PromptExit                = "Exit"
	PromptReportBySector      = "Report by sector"
	PromptResultsToFile       = "Dump results to file"
	PromptAppendToExcludeFile = "Append all results to exclude file"
	PromptDraftNotes          = "Draft application notes"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank the catalog for a single profile and print the shortlist",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	addProfileFlags(rankCmd)
	rankCmd.Flags().IntP("top-n", "n", matching.DefaultTopN, "number of results to return")
	rankCmd.Flags().BoolP("interactive", "i", false, "prompt for missing profile fields and offer actions on the results")
	rankCmd.Flags().StringP("output", "o", outputTable, "output format: table, json or yaml")
	rankCmd.Flags().Bool("notes", false, "draft an application note for every result (requires notes.enabled)")
}

// rank is the one-shot command for the cli.
func rank(cmd *cobra.Command) {
	ctx := context.Background()
	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the internmatch", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	format, _ := cmd.Flags().GetString("output")
	if !slices.Contains(outputFormats, format) {
		logger.Fatal("unknown output format", zap.String("output", format), zap.Strings("expected", outputFormats))
	}

	service, err := prepareService(ctx, config, logger)
	if err != nil {
		logger.Fatal("preparing the service", zap.Error(err))
	}

	profile, err := profileFromFlags(cmd)
	if err != nil {
		logger.Fatal("reading profile flags", zap.Error(err))
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	if interactive {
		if err := completeProfile(&profile, service.Catalog(), cmd.Flags().Changed("remote")); err != nil {
			logger.Fatal("reading profile", zap.Error(err))
		}
	}

	var topN *int
	if cmd.Flags().Changed("top-n") {
		n, _ := cmd.Flags().GetInt("top-n")
		topN = &n
	}

	matches, err := service.Recommend(ctx, "cli", profile, topN)
	if err != nil {
		logger.Fatal("ranking the catalog", zap.Error(err))
	}

	var adv *advisor.Advisor
	wantNotes, _ := cmd.Flags().GetBool("notes")
	if wantNotes || interactive {
		adv, err = newAdvisor(ctx, &config.Notes, logger)
		if err != nil {
			logger.Fatal("preparing the advisor", zap.Error(err))
		}
		if wantNotes && adv == nil {
			logger.Warn("skipping notes", zap.String("reason", "notes are disabled in config"))
		}
	}

	out := rankOutput{Profile: profile, Results: matches}
	if wantNotes && adv != nil {
		out.Notes = draftNotes(ctx, adv, profile, matches, logger)
	}

	if err := writeOutput(cmd.OutOrStdout(), format, out); err != nil {
		logger.Fatal("writing results", zap.Error(err))
	}

	if !interactive || len(matches) == 0 {
		return
	}

	session := &rankSession{
		out:         cmd.OutOrStdout(),
		format:      format,
		profile:     profile,
		matches:     matches,
		excludeFile: config.ExcludeFile,
		advisor:     adv,
		logger:      logger,
	}

	for {
		_, action, err := session.prompt().Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := session.handleAction(ctx, action); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func addProfileFlags(cmd *cobra.Command) {
	cmd.Flags().String("education", "", "education level, one of "+strings.Join(catalog.EducationLevels, ", "))
	cmd.Flags().String("sector", "", "preferred sector")
	cmd.Flags().String("state", "", "preferred state")
	cmd.Flags().Bool("remote", false, "accept remote postings regardless of state")
	cmd.Flags().StringSlice("skills", nil, "comma separated list of skills")
}

func profileFromFlags(cmd *cobra.Command) (matching.Profile, error) {
	var (
		profile matching.Profile
		err     error
	)

	flags := cmd.Flags()
	if profile.Education, err = flags.GetString("education"); err != nil {
		return profile, err
	}
	if profile.Sector, err = flags.GetString("sector"); err != nil {
		return profile, err
	}
	if profile.State, err = flags.GetString("state"); err != nil {
		return profile, err
	}
	if profile.RemoteOK, err = flags.GetBool("remote"); err != nil {
		return profile, err
	}

	skills, err := flags.GetStringSlice("skills")
	if err != nil {
		return profile, err
	}
	for _, s := range skills {
		profile.Skills = append(profile.Skills, splitList(s)...)
	}

	return profile, nil
}

func draftNotes(ctx context.Context, adv *advisor.Advisor, profile matching.Profile, matches []matching.Match, logger *zap.Logger) map[string]string {
	notes := make(map[string]string, len(matches))
	for _, m := range matches {
		note, err := adv.Note(ctx, profile, m)
		if err != nil {
			logger.Warn("drafting note failed", zap.String("posting_id", m.ID), zap.Error(err))
			continue
		}
		notes[m.ID] = note
	}
	return notes
}

type rankSession struct {
	out         io.Writer
	format      string
	profile     matching.Profile
	matches     []matching.Match
	excludeFile string
	advisor     *advisor.Advisor
	logger      *zap.Logger
}

func (s *rankSession) prompt() *promptui.Select {
	items := []string{PromptReportBySector, PromptResultsToFile}
	if s.excludeFile != "" && len(s.matches) != 0 {
		items = append(items, PromptAppendToExcludeFile)
	}
	if s.advisor != nil && len(s.matches) != 0 {
		items = append(items, PromptDraftNotes)
	}

	return &promptui.Select{
		Label: "What next?",
		Items: append(items, PromptExit),
	}
}

func (s *rankSession) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportBySector:
		pretty, _ := json.MarshalIndent(matching.ReportBySector(s.matches), "", "  ")
		s.logger.Info(string(pretty), zap.Int("results count", len(s.matches)))
		return nil
	case PromptResultsToFile:
		filename, err := matching.DumpToTmpFile(s.matches)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		s.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		if err := appendToExcludeFile(s.excludeFile, s.matches); err != nil {
			return err
		}
		s.logger.Info("appended to exclude file",
			zap.String("filename", s.excludeFile),
			zap.Int("count", len(s.matches)),
		)
		s.matches = nil
		return nil
	case PromptDraftNotes:
		notes := draftNotes(ctx, s.advisor, s.profile, s.matches, s.logger)
		return writeOutput(s.out, s.format, rankOutput{Profile: s.profile, Results: s.matches, Notes: notes})
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// appendToExcludeFile adds matches to the exclude list at path, creating it when absent.
func appendToExcludeFile(path string, matches []matching.Match) error {
	excluded, err := catalog.LoadExcluded(path)
	if errors.Is(err, fs.ErrNotExist) {
		excluded, err = &catalog.ExcludedPostings{}, nil
	}
	if err != nil {
		return fmt.Errorf("reading exclude file: %w", err)
	}

	excluded.Append(catalog.ToExcluded(matching.Postings(matches)))

	if err := excluded.ToFile(path); err != nil {
		return fmt.Errorf("writing exclude file: %w", err)
	}
	return nil
}
