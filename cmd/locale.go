package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/shelf/internal/repositories"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/urfave/cli/v3"
)

// LocaleGet prints the locale sent as Accept-Language.
func (r *Runner) LocaleGet(ctx context.Context, cmd *cli.Command) error {
	return r.writePlain("%s\n", r.locale())
}

// LocaleSet stores the locale preference.
func (r *Runner) LocaleSet(ctx context.Context, cmd *cli.Command) error {
	locale := strings.TrimSpace(cmd.StringArg("locale"))
	if locale == "" {
		return fmt.Errorf("%w: locale", shared.ErrMissingArgument)
	}
	if err := shared.Validator().Var(locale, "bcp47_language_tag"); err != nil {
		return fmt.Errorf("%w: %q is not a language tag", shared.ErrInvalidArgument, locale)
	}
	if r.prefs == nil {
		return fmt.Errorf("%w: preferences need the sqlite database (see 'shelf setup database')", shared.ErrMissingConfig)
	}

	if err := r.prefs.Set(ctx, repositories.PrefLocale, locale); err != nil {
		return fmt.Errorf("failed to store locale: %w", err)
	}
	return r.writePlain("Locale set to %s\n", locale)
}
