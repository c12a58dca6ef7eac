package cmd

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/chris-regnier/contentcal/internal/item"
	"github.com/spf13/cobra"
)

// profile defines a team persona for generating seed data.
type profile struct {
	description string
	// daysBack and daysAhead bound the generated schedule around today.
	daysBack  int
	daysAhead int
	// perDay is the most items generated on any one day.
	perDay int
	// mix weights how often each kind is generated.
	mix map[item.Kind]int
	// burst, when set, piles extra posts onto a single day so the month
	// view has to overflow.
	burst int
}

var profiles = map[string]profile{
	"social-team": {
		description: "Busy social calendar with a few articles (~60 days)",
		daysBack:    30,
		daysAhead:   30,
		perDay:      3,
		mix:         map[item.Kind]int{item.KindSocialPost: 7, item.KindArticle: 2, item.KindOutline: 1},
	},
	"editorial": {
		description: "Long-form pipeline of outlines and articles (~90 days)",
		daysBack:    45,
		daysAhead:   45,
		perDay:      2,
		mix:         map[item.Kind]int{item.KindSocialPost: 2, item.KindArticle: 4, item.KindOutline: 4},
	},
	"launch": {
		description: "A product launch week with an overloaded launch day (~30 days)",
		daysBack:    10,
		daysAhead:   20,
		perDay:      2,
		mix:         map[item.Kind]int{item.KindSocialPost: 6, item.KindArticle: 2, item.KindOutline: 2},
		burst:       7,
	},
}

var (
	seedPlatforms = []string{"x", "linkedin", "instagram", "threads", "bluesky", "facebook"}
	postTopics    = []string{
		"Launch teaser", "Customer story", "Behind the scenes", "Weekly tips",
		"Webinar reminder", "Product update", "Team spotlight", "Poll of the week",
		"Case study clip", "Feature deep dive", "Release notes thread", "Event recap",
	}
	articleTopics = []string{
		"How we plan a content quarter", "Ten lessons from our launch",
		"A field guide to scheduling", "Measuring what matters",
		"Writing for three platforms at once", "The state of our community",
		"From outline to published in a week", "Working with guest authors",
	}
	outlineTopics = []string{
		"Q3 campaign plan", "Newsletter structure", "Launch narrative",
		"Interview questions", "Series: getting started", "Holiday schedule",
	}
)

var seedCmd = &cobra.Command{
	Use:   "seed [profile]",
	Short: "Seed the local store with realistic sample content",
	Long: `Populate the local sqlite or markdown store with scheduled posts, outlines
and articles around today.

Available profiles:
  social-team – Busy social calendar with a few articles (~60 days)
  editorial   – Long-form pipeline of outlines and articles (~90 days)
  launch      – A product launch week with an overloaded launch day (~30 days)

If no profile is specified, "social-team" is used.`,
	Example: `  contentcal seed
  contentcal seed launch
  contentcal seed editorial --seed 42
  contentcal seed --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		listProfiles, _ := cmd.Flags().GetBool("list")
		if listProfiles {
			names := make([]string, 0, len(profiles))
			for name := range profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintln(out, "Available profiles:")
			for _, name := range names {
				fmt.Fprintf(out, "  %-14s %s\n", name, profiles[name].description)
			}
			return nil
		}

		profileName := "social-team"
		if len(args) > 0 {
			profileName = args[0]
		}
		p, ok := profiles[profileName]
		if !ok {
			return fmt.Errorf("unknown profile %q (run 'contentcal seed --list')", profileName)
		}

		store, err := localStore()
		if err != nil {
			return err
		}

		seed, _ := cmd.Flags().GetInt64("seed")
		if seed == 0 {
			seed = now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))

		ctx := commandContext(cmd)
		counts := map[item.Kind]int{}
		for _, it := range generateItems(p, now().In(location()), rng) {
			if err := store.Create(ctx, it); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: skipping %s: %v\n", it.Ref(), err)
				continue
			}
			counts[it.Kind]++
		}

		if jsonOutput {
			fmt.Fprintf(out, `{"profile":"%s","posts_created":%d,"outlines_created":%d,"articles_created":%d}`+"\n",
				profileName, counts[item.KindSocialPost], counts[item.KindOutline], counts[item.KindArticle])
		} else {
			fmt.Fprintf(out, "Seeded with profile %q:\n", profileName)
			fmt.Fprintf(out, "  Posts created:    %d\n", counts[item.KindSocialPost])
			fmt.Fprintf(out, "  Outlines created: %d\n", counts[item.KindOutline])
			fmt.Fprintf(out, "  Articles created: %d\n", counts[item.KindArticle])
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().Bool("list", false, "list available profiles")
	seedCmd.Flags().Int64("seed", 0, "random seed for reproducible data (0 = random)")
	rootCmd.AddCommand(seedCmd)
}

// generateItems builds the schedule for p around today.
func generateItems(p profile, today time.Time, rng *rand.Rand) []item.Item {
	var items []item.Item
	start := today.AddDate(0, 0, -p.daysBack)
	end := today.AddDate(0, 0, p.daysAhead)

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		n := rng.Intn(p.perDay + 1)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			n /= 2
		}
		for range n {
			items = append(items, seedItem(pickKind(p.mix, rng), day, today, rng))
		}
	}

	if p.burst > 0 {
		launch := today.AddDate(0, 0, 3)
		for range p.burst {
			items = append(items, seedItem(item.KindSocialPost, launch, today, rng))
		}
	}
	return items
}

func pickKind(mix map[item.Kind]int, rng *rand.Rand) item.Kind {
	total := 0
	for _, k := range item.Kinds {
		total += mix[k]
	}
	n := rng.Intn(max(total, 1))
	for _, k := range item.Kinds {
		if n < mix[k] {
			return k
		}
		n -= mix[k]
	}
	return item.KindSocialPost
}

// seedItem creates one item on day. Past items have mostly gone out, future
// ones are still being prepared.
func seedItem(kind item.Kind, day, today time.Time, rng *rand.Rand) item.Item {
	at := randomSlot(day, rng)
	created := at.AddDate(0, 0, -(3 + rng.Intn(14)))
	past := at.Before(today)

	it := item.Item{
		ID:          item.NewID(),
		Kind:        kind,
		ScheduledAt: item.FormatTimestamp(at),
		CreatedAt:   item.FormatTimestamp(created),
	}

	switch kind {
	case item.KindSocialPost:
		it.Title = postTopics[rng.Intn(len(postTopics))]
		it.Platforms = pickPlatforms(rng)
		it.Body = fmt.Sprintf("%s for %s.\n\n#content #%s", it.Title, day.Format("Monday"), strings.ToLower(day.Format("Jan")))
		switch {
		case past && rng.Float64() < 0.85:
			it.Status = item.StatusPosted
			it.PublishedAt = item.FormatTimestamp(at.Add(time.Duration(rng.Intn(5)) * time.Minute))
		case past:
			it.Status = []item.Status{item.StatusFailed, item.StatusCancelled}[rng.Intn(2)]
		case at.Before(today.AddDate(0, 0, 2)) && rng.Float64() < 0.5:
			it.Status = item.StatusQueued
		default:
			it.Status = item.StatusPending
		}
	case item.KindArticle:
		it.Title = articleTopics[rng.Intn(len(articleTopics))]
		it.Body = fmt.Sprintf("# %s\n\n## Summary\n\nDraft notes for %s.\n\n- Key point\n- Supporting data\n- Call to action\n",
			it.Title, day.Format("January 2"))
		switch {
		case past && rng.Float64() < 0.8:
			it.Status = item.StatusPublished
			it.PublishedAt = item.FormatTimestamp(at)
		case past:
			it.Status = item.StatusCompleted
		default:
			it.Status = []item.Status{item.StatusDraft, item.StatusDraft, item.StatusGenerating, item.StatusCompleted}[rng.Intn(4)]
		}
	case item.KindOutline:
		it.Title = outlineTopics[rng.Intn(len(outlineTopics))]
		it.Body = fmt.Sprintf("## %s\n\n1. Hook\n2. Context\n3. Examples\n4. Next steps\n", it.Title)
	}
	return it
}

// randomSlot returns a working-hours time on day at a quarter-hour.
func randomSlot(day time.Time, rng *rand.Rand) time.Time {
	y, m, d := day.Date()
	hour := 8 + rng.Intn(10)
	minute := 15 * rng.Intn(4)
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location())
}

func pickPlatforms(rng *rand.Rand) []string {
	n := 1 + rng.Intn(3)
	perm := rng.Perm(len(seedPlatforms))
	out := make([]string, n)
	for i := range n {
		out[i] = seedPlatforms[perm[i]]
	}
	sort.Strings(out)
	return out
}
