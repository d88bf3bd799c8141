package main

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/soulinitiatives/cleanup/pkg/catalog"
	"github.com/soulinitiatives/cleanup/pkg/cleanup"
)

var (
	submitSessionID string
	eagerSession    bool

	homestayValues []string
	homestayOther  string
	locationValues []string
	locationOther  string
	homestayBags   map[string]string
	homestayKg     map[string]string
	locationBags   map[string]string
	locationKg     map[string]string

	trashTypes      []string
	trashOtherLabel string
	trashBags       []string

	destinationBags map[string]int
	destinationTo   map[string]string

	surveyTrash  []string
	surveyKg     map[string]string
	surveyEndUse map[string]string
)

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a cleanup report to the backend",
		Long: "Builds one report from flags and sends it. A new session is created unless " +
			"--session reuses an existing one.",
	}
	addClientFlags(cmd)
	cmd.PersistentFlags().StringVar(&submitSessionID, "session", "",
		"Existing session id (a new session is created when empty)")
	cmd.PersistentFlags().BoolVar(&eagerSession, "eager-session", false,
		"Create the session before building the report; failure is retried on submit")

	location := &cobra.Command{
		Use:   "location",
		Short: "Report bags and weight collected per homestay and location",
		Args:  cobra.NoArgs,
		RunE:  runSubmitLocation,
	}
	trash := &cobra.Command{
		Use:   "trash",
		Short: "Report sorted trash with a weight per bag",
		Args:  cobra.NoArgs,
		RunE:  runSubmitTrash,
	}
	destinations := &cobra.Command{
		Use:   "destinations",
		Short: "Report where sorted bags went",
		Args:  cobra.NoArgs,
		RunE:  runSubmitDestinations,
	}
	survey := &cobra.Command{
		Use:   "survey",
		Short: "Submit the combined collection and end-use survey",
		Args:  cobra.NoArgs,
		RunE:  runSubmitSurvey,
	}

	for _, c := range []*cobra.Command{location, survey} {
		c.Flags().StringSliceVar(&homestayValues, "homestay", nil,
			"Homestays: "+strings.Join(catalog.Homestays(), ", "))
		c.Flags().StringVar(&homestayOther, "homestay-other", "", "Homestay not in the list")
		c.Flags().StringSliceVar(&locationValues, "location", nil,
			"Locations: "+strings.Join(catalog.Locations(), ", "))
		c.Flags().StringVar(&locationOther, "location-other", "", "Location not in the list")
		c.Flags().StringToStringVar(&homestayBags, "homestay-bags", nil, "Bags per homestay, e.g. Kri=3")
		c.Flags().StringToStringVar(&homestayKg, "homestay-kg", nil, "Kilograms per homestay, e.g. Kri=4.5")
		c.Flags().StringToStringVar(&locationBags, "location-bags", nil, "Bags per location")
		c.Flags().StringToStringVar(&locationKg, "location-kg", nil, "Kilograms per location")
	}

	trash.Flags().StringSliceVar(&trashTypes, "type", nil, "Trash types without weighed bags")
	trash.Flags().StringVar(&trashOtherLabel, "other-label", "", "Label for the other trash type")
	trash.Flags().StringArrayVar(&trashBags, "bag", nil,
		"One weighed bag as type=kg; repeat per bag")

	destinations.Flags().StringToIntVar(&destinationBags, "bags", nil, "Bags per trash type, e.g. ropes=2")
	destinations.Flags().StringToStringVar(&destinationTo, "to", nil,
		"Destination per trash type: "+strings.Join(catalog.Destinations(), ", "))

	survey.Flags().StringSliceVar(&surveyTrash, "trash", nil, "Trash types")
	survey.Flags().StringToStringVar(&surveyKg, "trash-kg", nil, "Kilograms per trash type")
	survey.Flags().StringToStringVar(&surveyEndUse, "end-use", nil,
		"End use per trash type: "+strings.Join(catalog.EndUses(), ", "))

	cmd.AddCommand(location, trash, destinations, survey)
	return cmd
}

// fixedSession hands out an id chosen by the user.
type fixedSession string

func (s fixedSession) CreateSession(ctx context.Context) (string, error) {
	return string(s), nil
}

// submitForm applies edit to form and submits it through a Screen.
func submitForm[F cleanup.Form](cmd *cobra.Command, form F, edit func(F) error) error {
	client, cfg, err := resolveClient()
	if err != nil {
		return err
	}

	logger := commandLogger(cmd)
	var creator cleanup.SessionCreator = cleanup.BackendSessionCreator{Backend: client}
	if submitSessionID != "" {
		creator = fixedSession(submitSessionID)
	}
	sessions := cleanup.NewSessionManager(creator)
	if eagerSession && submitSessionID == "" {
		if _, err := sessions.EnsureSession(cmd.Context()); err != nil {
			logger.Warn("eager session creation failed", "error", err)
		}
	}
	screen := cleanup.NewScreen(form, client,
		cleanup.WithSessions(sessions),
		cleanup.WithOffset(cfg.Analytics.CollectedOffsetMinutes),
		cleanup.WithLogger(logger),
	)

	if err := screen.Edit(edit); err != nil {
		return err
	}
	record, err := screen.Submit(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, record)
	}
	fmt.Fprintf(out, "Submitted to %s\n", form.Table())
	return nil
}

// withOther appends the selection sentinel when a free-text value is given.
func withOther(values []string, other string) []string {
	if strings.TrimSpace(other) == "" {
		return values
	}
	return append(append([]string(nil), values...), catalog.Other)
}

// applyEntries calls set for each entry in key order.
func applyEntries(entries map[string]string, set func(key, raw string) error) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := set(k, entries[k]); err != nil {
			return err
		}
	}
	return nil
}

func runSubmitLocation(cmd *cobra.Command, args []string) error {
	return submitForm(cmd, cleanup.NewLocationForm(), func(f *cleanup.LocationForm) error {
		f.SelectHomestays(withOther(homestayValues, homestayOther))
		f.SetHomestayOther(homestayOther)
		f.SelectLocations(withOther(locationValues, locationOther))
		f.SetLocationOther(locationOther)
		for _, step := range []struct {
			entries map[string]string
			set     func(key, raw string) error
		}{
			{homestayBags, f.SetHomestayBags},
			{homestayKg, f.SetHomestayKg},
			{locationBags, f.SetLocationBags},
			{locationKg, f.SetLocationKg},
		} {
			if err := applyEntries(step.entries, step.set); err != nil {
				return err
			}
		}
		return nil
	})
}

func runSubmitTrash(cmd *cobra.Command, args []string) error {
	for _, key := range trashTypes {
		if !catalog.IsTrashType(key) {
			return fmt.Errorf("--type: unknown trash type %q", key)
		}
	}
	types := append([]string(nil), trashTypes...)
	weights := map[string][]string{}
	for _, b := range trashBags {
		key, kg, ok := strings.Cut(b, "=")
		if !ok {
			return fmt.Errorf("--bag %q: want type=kg", b)
		}
		if !catalog.IsTrashType(key) {
			return fmt.Errorf("--bag %q: unknown trash type %q", b, key)
		}
		if _, seen := weights[key]; !seen && !slices.Contains(types, key) {
			types = append(types, key)
		}
		weights[key] = append(weights[key], kg)
	}

	return submitForm(cmd, cleanup.NewTrashForm(), func(f *cleanup.TrashForm) error {
		f.SelectTypes(types)
		f.SetOtherLabel(trashOtherLabel)
		for _, key := range f.Types() {
			if err := f.SetCount(key, len(weights[key])); err != nil {
				return err
			}
			for i, kg := range weights[key] {
				if err := f.SetBagKg(key, i, kg); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func runSubmitDestinations(cmd *cobra.Command, args []string) error {
	return submitForm(cmd, cleanup.NewDestinationForm(), func(f *cleanup.DestinationForm) error {
		keys := make([]string, 0, len(destinationBags))
		for k := range destinationBags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := f.SetBags(k, destinationBags[k]); err != nil {
				return err
			}
		}
		return applyEntries(destinationTo, f.SetDestination)
	})
}

func runSubmitSurvey(cmd *cobra.Command, args []string) error {
	return submitForm(cmd, cleanup.NewSurveyForm(), func(f *cleanup.SurveyForm) error {
		f.SelectHomestays(withOther(homestayValues, homestayOther))
		f.SetHomestayOther(homestayOther)
		f.SelectLocations(withOther(locationValues, locationOther))
		f.SetLocationOther(locationOther)
		f.SelectTrash(surveyTrash)
		for _, step := range []struct {
			entries map[string]string
			set     func(key, raw string) error
		}{
			{homestayBags, f.SetHomestayBags},
			{homestayKg, f.SetHomestayKg},
			{locationBags, f.SetLocationBags},
			{locationKg, f.SetLocationKg},
			{surveyKg, f.SetTrashKg},
			{surveyEndUse, f.SetEndUse},
		} {
			if err := applyEntries(step.entries, step.set); err != nil {
				return err
			}
		}
		return nil
	})
}
