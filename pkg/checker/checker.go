// Package checker defines the interfaces for the two collaborators
// spec.md section 1 declares external to this engine: the permission/API
// matcher ("Checker") and package indexing (source path -> owning
// package). A concrete, config-driven implementation is provided because
// the scan engine needs something runnable, but it remains a thin
// stand-in: a real deployment would replace ConfigChecker with a
// proper policy engine behind the same interface.
package checker

import (
	"fmt"
	"sort"
	"strings"
)

// APIName identifies a configured API category, e.g. "fs" or "network".
type APIName string

// PackageID identifies a source package.
type PackageID string

// CrateSel selects a specific crate within a package: either the
// package's primary (root) crate, or an auxiliary one (tests, examples,
// additional binaries). Only the primary selector may be considered the
// origin of an "exported" API (spec.md glossary, "Primary crate
// selector").
type CrateSel struct {
	Package   PackageID
	CrateName string
	Primary   bool
}

// Key returns a comparable, unique identity for the selector, used as
// part of the deduplication key in pkg/attribution.
func (c CrateSel) Key() string {
	kind := "aux"
	if c.Primary {
		kind = "primary"
	}
	return string(c.Package) + "\x00" + c.CrateName + "\x00" + kind
}

func (c CrateSel) String() string {
	return fmt.Sprintf("%s(%s)", c.Package, c.CrateName)
}

// PackageIndex maps a source file path to the crate selectors of the
// package(s) that claim it. A single source file can belong to more than
// one crate selector, e.g. a file shared between a library's primary
// crate and its test crate.
type PackageIndex interface {
	CrateSelsForPath(path string) ([]CrateSel, error)
}

// Checker is the name/API matcher bridge's collaborator (spec.md section
// 4.6): given a hierarchical name prefix, it reports which configured
// APIs match. It also doubles as source of the reverse mapping used by
// exported-API discovery (spec.md section 4.9): an API's configured name
// (its module-name form) to its identifier.
type Checker interface {
	PackageIndex

	// ApisForNameIterator returns the set of APIs whose configured name
	// parts are a prefix match for parts.
	ApisForNameIterator(parts []string) map[APIName]struct{}

	// APINamesByModule returns the reverse index used by exported-API
	// discovery: module-name text -> the API it corresponds to.
	APINamesByModule() map[string]APIName
}

// APIDef is one entry in the configured API catalogue: a named API
// category together with the hierarchical name prefix that identifies
// uses of it (e.g. APIName "fs" matching parts ["std", "fs"]).
type APIDef struct {
	Name  APIName  `yaml:"name"`
	Parts []string `yaml:"parts"`
}

// PackageRule maps a source-path prefix to the package/crate it belongs
// to. Rules are matched longest-prefix-first, mirroring how a real
// package index would resolve overlapping workspace layouts.
type PackageRule struct {
	PathPrefix string    `yaml:"path_prefix"`
	Package    PackageID `yaml:"package"`
	CrateName  string    `yaml:"crate_name"`
	Primary    bool      `yaml:"primary"`
}

// Config is the YAML-decodable shape of the API catalogue and package
// index table. This is the concrete stand-in for spec.md's external
// "configuration loader"; see SPEC_FULL.md section 10.2.
type Config struct {
	APIs     []APIDef      `yaml:"apis"`
	Packages []PackageRule `yaml:"packages"`
}

// ConfigChecker is a Checker/PackageIndex implementation backed by a
// Config loaded from YAML.
type ConfigChecker struct {
	apis     []APIDef
	byModule map[string]APIName
	rules    []PackageRule
}

// FromConfig builds a ConfigChecker from a decoded Config. Package rules
// are sorted longest-prefix-first so CrateSelsForPath always matches the
// most specific rule.
func FromConfig(cfg Config) *ConfigChecker {
	byModule := make(map[string]APIName, len(cfg.APIs))
	for _, api := range cfg.APIs {
		if len(api.Parts) >= 2 {
			byModule[api.Parts[1]] = api.Name
		} else if len(api.Parts) == 1 {
			byModule[api.Parts[0]] = api.Name
		}
	}
	rules := append([]PackageRule(nil), cfg.Packages...)
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].PathPrefix) > len(rules[j].PathPrefix)
	})
	return &ConfigChecker{apis: cfg.APIs, byModule: byModule, rules: rules}
}

// ApisForNameIterator implements Checker.
func (c *ConfigChecker) ApisForNameIterator(parts []string) map[APIName]struct{} {
	out := map[APIName]struct{}{}
	for _, api := range c.apis {
		if prefixMatches(api.Parts, parts) {
			out[api.Name] = struct{}{}
		}
	}
	return out
}

// APINamesByModule implements Checker.
func (c *ConfigChecker) APINamesByModule() map[string]APIName {
	return c.byModule
}

// CrateSelsForPath implements PackageIndex by longest-prefix match
// against the configured package rules.
func (c *ConfigChecker) CrateSelsForPath(path string) ([]CrateSel, error) {
	for _, rule := range c.rules {
		if rule.PathPrefix == "" || strings.HasPrefix(path, rule.PathPrefix) {
			return []CrateSel{{
				Package:   rule.Package,
				CrateName: rule.CrateName,
				Primary:   rule.Primary,
			}}, nil
		}
	}
	return nil, nil
}

// prefixMatches reports whether apiParts is a prefix of nameParts (every
// api part appears, in order, at the start of nameParts).
func prefixMatches(apiParts, nameParts []string) bool {
	if len(apiParts) > len(nameParts) {
		return false
	}
	for i, p := range apiParts {
		if nameParts[i] != p {
			return false
		}
	}
	return true
}
