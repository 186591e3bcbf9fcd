// Package cli implements recipectl, a terminal front end for the detection
// and recipe pipeline that runs without the HTTP server.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	detectionentity "recipe_backend/internal/feature/detection/domain/entity"
	"recipe_backend/internal/feature/recipes/domain/entity"
	"recipe_backend/internal/feature/recipes/domain/ingredient"
	"recipe_backend/internal/feature/recipes/usecase"
	jwtmw "recipe_backend/internal/platform/jwt"
)

// Recipes is the part of the recipe usecase recipectl drives.
type Recipes interface {
	ResolveCategories(ctx context.Context, term string) (entity.CategoryLookup, error)
	FetchRanking(ctx context.Context, categoryID string) (entity.RankingLookup, error)
	SearchRecipes(ctx context.Context, label string, width int) (*entity.SearchResult, error)
}

// Detector runs ingredient detection on raw image bytes.
type Detector interface {
	DetectIngredients(ctx context.Context, imageData []byte) (*detectionentity.DetectionResult, error)
}

// Purger clears cached provider responses.
type Purger interface {
	Purge(ctx context.Context) (int, error)
}

// Runtime builds the dependencies for each subcommand lazily, so that
// "labels" or "token" never connect to Redis or load a model.
type Runtime struct {
	Recipes  func(ctx context.Context) (Recipes, func(), error)
	Detector func(ctx context.Context) (Detector, io.Closer, error)
	Cache    func(ctx context.Context) (Purger, func(), error)
}

// Flags holds the command line options.
type Flags struct {
	Width    int
	Subject  string
	TokenTTL time.Duration
}

// NewRootCommand creates the recipectl command tree.
func NewRootCommand(rt *Runtime) *cobra.Command {
	flags := &Flags{}
	root := &cobra.Command{
		Use:   "recipectl",
		Short: "Ingredient detection and recipe ranking from the terminal",
		Long: `recipectl runs the same pipeline as the HTTP server.

Examples:
  recipectl labels                 # list known detector labels
  recipectl detect fridge.jpg      # detect ingredients in an image
  recipectl search daikon          # recipes for a detected label
  recipectl warm-cache             # prefetch categories and rankings
  recipectl token --subject ops    # issue an operator JWT`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newLabelsCommand(),
		newDetectCommand(rt),
		newSearchCommand(rt, flags),
		newWarmCacheCommand(rt),
		newPurgeCacheCommand(rt),
		newTokenCommand(flags),
	)
	return root
}

func newLabelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List known detector labels with their category term",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, l := range ingredient.Labels() {
				term := ingredient.Translate(l)
				id, _ := ingredient.ReferenceCategoryID(term)
				fmt.Fprintf(out, "%s\t%s\t%s\n", l, term, id)
			}
			return nil
		},
	}
}

func newDetectCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect ingredients in an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}
			d, closer, err := rt.Detector(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			res, err := d.DetectIngredients(cmd.Context(), data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(res.Labels) == 0 {
				fmt.Fprintln(out, "no ingredients detected")
				return nil
			}
			for _, l := range res.Labels {
				fmt.Fprintf(out, "%s\t%s\n", l, ingredient.Translate(l))
			}
			if res.ArtifactKey != "" {
				fmt.Fprintf(out, "archived as %s\n", res.ArtifactKey)
			}
			return nil
		},
	}
}

func newSearchCommand(rt *Runtime, flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <label>",
		Short: "Show recipe rankings for a detector label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := rt.Recipes(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			res, err := r.SearchRecipes(cmd.Context(), args[0], flags.Width)
			if err != nil {
				return err
			}
			printSearchResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().IntVarP(&flags.Width, "width", "w", usecase.DefaultThumbnailWidth, "thumbnail width in pixels")
	return cmd
}

// newWarmCacheCommand prefetches the category list and the ranking of every
// known label so the first searches after 08:00 JST are served from cache.
func newWarmCacheCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "warm-cache",
		Short: "Prefetch categories and rankings for every known label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := rt.Recipes(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			n, err := WarmCache(cmd.Context(), r, ingredient.Labels())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "warmed %d rankings\n", n)
			return nil
		},
	}
}

func newPurgeCacheCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-cache",
		Short: "Delete cached categories and rankings from Redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, done, err := rt.Cache(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			n, err := p.Purge(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d keys\n", n)
			return nil
		},
	}
}

func newTokenCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operator JWT for the history endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := os.Getenv(jwtmw.EnvKeyJWTSecret)
			if secret == "" {
				return fmt.Errorf("%s is not set", jwtmw.EnvKeyJWTSecret)
			}
			token, err := jwtmw.NewGenerator(secret, flags.TokenTTL).GenerateToken(flags.Subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&flags.Subject, "subject", "s", "operator", "token subject")
	cmd.Flags().DurationVar(&flags.TokenTTL, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

// WarmCache resolves the term of every label and fetches each matched ranking.
// Unavailable lookups are skipped. It returns the number of rankings fetched.
func WarmCache(ctx context.Context, r Recipes, labels []string) (int, error) {
	seen := map[string]bool{}
	n := 0
	for _, l := range labels {
		term := ingredient.Translate(l)
		if seen[term] {
			continue
		}
		seen[term] = true

		lookup, err := r.ResolveCategories(ctx, term)
		if err != nil {
			return n, err
		}
		for _, c := range lookup.Categories {
			id, err := c.ID()
			if err != nil {
				continue
			}
			ranking, err := r.FetchRanking(ctx, id)
			if err != nil {
				return n, err
			}
			if ranking.Status == entity.LookupFound {
				n++
			}
		}
	}
	return n, nil
}

func printSearchResult(out io.Writer, res *entity.SearchResult) {
	fmt.Fprintf(out, "%s → %s (%s)\n", res.Label, res.Term, res.Status)
	for _, c := range res.Categories {
		fmt.Fprintf(out, "\n[%s] %s: %s\n", c.CategoryID, c.Category.CategoryName, c.Ranking.Status)
		for _, rec := range c.Ranking.Recipes {
			mark := ""
			if rec.ThumbnailFailed {
				mark = " (no thumbnail)"
			}
			fmt.Fprintf(out, "%d. %s %s %s%s\n", rec.Rank, rec.RecipeTitle, rec.RecipeIndication, rec.RecipeURL, mark)
		}
	}
}
