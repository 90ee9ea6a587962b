package mocktests

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/models"
)

// shortID is the prefix shown in tables; any unique prefix is accepted back.
func shortID(id string) string {
	if len(id) > 10 {
		return id[:10]
	}
	return id
}

func resolveID(ctx *cli.Context, prefix string) (string, error) {
	results, err := ctx.Mocks.LoadAll(models.MockFilter{UserID: ctx.Mocks.Owner().UserID})
	if err != nil {
		return "", err
	}
	var match string
	for _, m := range results {
		if m.ID == prefix {
			return m.ID, nil
		}
		if strings.HasPrefix(m.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = m.ID
		}
	}
	if match == "" || prefix == "" {
		return "", fmt.Errorf("mock test %s: %w", prefix, errors.ErrNotFound)
	}
	return match, nil
}

// resolveDomain accepts a catalog number (as listed by "mock domains"), the
// exact name, or a case-insensitive fragment matching exactly one entry.
// Anything else is returned unchanged so validation can report it.
func resolveDomain(s string) string {
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(constants.KnowledgeDomains) {
		return constants.KnowledgeDomains[n-1]
	}
	if constants.IsKnowledgeDomain(s) {
		return s
	}
	needle := strings.ToLower(s)
	var match string
	for _, d := range constants.KnowledgeDomains {
		if strings.Contains(strings.ToLower(d), needle) {
			if match != "" {
				return s
			}
			match = d
		}
	}
	if match == "" {
		return s
	}
	return match
}
