package main

import (
	"fmt"
	"strconv"
	"strings"

	"outreach/internal/models"
)

// parseProspect parses an id:domain retire target.
func parseProspect(raw string) (models.RetireTarget, error) {
	idPart, domain, ok := strings.Cut(raw, ":")
	if !ok {
		return models.RetireTarget{}, fmt.Errorf("invalid prospect %q: want id:domain", raw)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 {
		return models.RetireTarget{}, fmt.Errorf("invalid prospect %q: id must be a positive integer", raw)
	}
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return models.RetireTarget{}, fmt.Errorf("invalid prospect %q: domain is empty", raw)
	}
	return models.RetireTarget{ID: id, Domain: domain}, nil
}
