// Package catalog reads the user-authored franchise/category/item tree from
// disk and maps its free-form entries onto models.CatalogItem.
package catalog

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/GojiraTai/koleksiyon-takip/models"
)

var (
	ErrNoFranchises     = errors.New("no franchise index found")
	ErrUnsupportedFile  = errors.New("unsupported catalog file")
	ErrCategoryNotFound = errors.New("category has no collection")
)

// Index files are looked up in this order.
var indexExtensions = []string{".yaml", ".yml", ".json"}

// Namespace for ids derived from entries that declare none.
var itemNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("koleksiyon-takip/catalog-item"))

// Load reads every franchise under root (<root>/<key>/<key>.index.yaml and
// friends). Entries that cannot be used are skipped; the returned error joins
// one error per skipped entry and is non-nil even when a catalog is returned.
func Load(fs afero.Fs, root string) (*models.Catalog, error) {
	entries, err := afero.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("read catalog root: %w", err)
	}

	catalog := &models.Catalog{}
	var problems []error
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		key := entry.Name()
		if _, ok := findIndex(fs, filepath.Join(root, key), key); !ok {
			continue
		}
		fr, err := LoadFranchise(fs, root, key)
		if fr == nil {
			problems = append(problems, err)
			continue
		}
		if err != nil {
			problems = append(problems, err)
		}
		catalog.Franchises = append(catalog.Franchises, *fr)
	}

	if len(catalog.Franchises) == 0 && len(problems) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoFranchises, root)
	}
	log.Printf("[catalog] loaded %d franchises from %s", len(catalog.Franchises), root)
	return catalog, errors.Join(problems...)
}

// LoadFranchise reads a single franchise. Like Load, a non-nil franchise may be
// returned together with the problems found in it.
func LoadFranchise(fs afero.Fs, root, key string) (*models.Franchise, error) {
	dir := filepath.Join(root, key)
	indexPath, ok := findIndex(fs, dir, key)
	if !ok {
		return nil, fmt.Errorf("franchise %s: %w", key, os.ErrNotExist)
	}
	raw, err := readDocument(fs, indexPath)
	if err != nil {
		return nil, fmt.Errorf("franchise %s: %w", key, err)
	}
	index := cast.ToStringMap(raw)

	fr := &models.Franchise{
		Key:   key,
		Title: firstString(index, "title", "name"),
	}
	if fr.Title == "" {
		fr.Title = key
	}

	var problems []error
	for _, def := range categoryDefs(index) {
		cat := models.Category{Key: def.key, Title: def.title}
		rawItems, err := def.load(fs, root, dir)
		if err != nil {
			problems = append(problems, fmt.Errorf("franchise %s category %s: %w", key, def.key, err))
		}
		seen := make(map[string]bool, len(rawItems))
		for idx, rawItem := range rawItems {
			item, err := mapItem(cast.ToStringMap(rawItem), idx, key, def.key, dir)
			if err == nil && seen[item.ID] {
				err = &models.MalformedEntryError{ItemID: item.ID, Reason: "duplicate id"}
			}
			if err != nil {
				problems = append(problems, fmt.Errorf("franchise %s category %s entry %d: %w", key, def.key, idx, err))
				continue
			}
			seen[item.ID] = true
			cat.Items = append(cat.Items, item)
		}
		fr.Categories = append(fr.Categories, cat)
	}

	log.Printf("[catalog] franchise=%s categories=%d items=%d skipped=%d", key, len(fr.Categories), fr.ItemCount(), len(problems))
	return fr, errors.Join(problems...)
}

func findIndex(fs afero.Fs, dir, key string) (string, bool) {
	for _, ext := range indexExtensions {
		p := filepath.Join(dir, key+".index"+ext)
		if ok, _ := afero.Exists(fs, p); ok {
			return p, true
		}
	}
	return "", false
}

// readDocument decodes a YAML or JSON file into plain maps and slices.
func readDocument(fs afero.Fs, p string) (any, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(p))
	}
	data, err := afero.ReadFile(fs, p)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(p), err)
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(p), err)
	}
	return doc, nil
}

type categoryDef struct {
	key    string
	title  string
	source any // collection path or inline list/document
}

// categoryDefs merges the "categories" list with the older "libs" map.
func categoryDefs(index map[string]any) []categoryDef {
	libs := cast.ToStringMap(index["libs"])
	var defs []categoryDef
	listed := make(map[string]bool)

	for _, rawCat := range cast.ToSlice(index["categories"]) {
		cat := cast.ToStringMap(rawCat)
		key := firstString(cat, "key", "id", "slug")
		if key == "" || listed[key] {
			continue
		}
		listed[key] = true
		def := categoryDef{key: key, title: firstString(cat, "title", "name", "label")}
		if def.title == "" {
			def.title = key
		}
		for _, field := range []string{"file", "path", "src", "items", "list", "data"} {
			if v, ok := cat[field]; ok && v != nil {
				def.source = v
				break
			}
		}
		if def.source == nil {
			def.source = libs[key]
		}
		defs = append(defs, def)
	}

	extra := make([]string, 0, len(libs))
	for key := range libs {
		if !listed[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		defs = append(defs, categoryDef{key: key, title: key, source: libs[key]})
	}
	return defs
}

func (c categoryDef) load(fs afero.Fs, root, dir string) ([]any, error) {
	switch src := c.source.(type) {
	case nil:
		return nil, ErrCategoryNotFound
	case string:
		p, ok := resolveFile(fs, root, dir, src)
		if !ok {
			return nil, fmt.Errorf("collection %s: %w", src, os.ErrNotExist)
		}
		doc, err := readDocument(fs, p)
		if err != nil {
			return nil, err
		}
		return collectionItems(doc), nil
	default:
		return collectionItems(src), nil
	}
}

// collectionItems accepts a bare list or a document wrapping it under
// items, list or data.
func collectionItems(doc any) []any {
	if list, ok := doc.([]any); ok {
		return list
	}
	m := cast.ToStringMap(doc)
	for _, field := range []string{"items", "list", "data"} {
		if list, ok := m[field].([]any); ok {
			return list
		}
	}
	return nil
}

// resolveFile finds a collection path relative to the franchise directory,
// the catalog root or the root's parent.
func resolveFile(fs afero.Fs, root, dir, ref string) (string, bool) {
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "./")
	if ref == "" {
		return "", false
	}
	candidates := []string{filepath.Join(dir, ref), filepath.Join(root, ref), filepath.Join(filepath.Dir(root), ref)}
	if filepath.IsAbs(ref) {
		candidates = append([]string{ref}, candidates...)
	}
	for _, p := range candidates {
		if ok, _ := afero.Exists(fs, p); ok {
			return p, true
		}
	}
	return "", false
}

var (
	externalIDPattern  = regexp.MustCompile(`^tt\d{5,}$`)
	stubSeasonPattern  = regexp.MustCompile(`(?i)(?:season|sezon)\s*(\d{1,2})\b|\b(\d{1,2})\.\s*(?:season|sezon)`)
	leadingYearPattern = regexp.MustCompile(`^\d{4}`)
	remoteURLPattern   = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
)

func mapItem(raw map[string]any, idx int, franchise, category, dir string) (models.CatalogItem, error) {
	scope := franchise + ":" + category
	item := models.CatalogItem{
		Title:             firstString(raw, "title", "name", "label", "originalTitle", "trTitle", "display"),
		Kind:              itemKind(raw),
		RawSeasonNumber:   firstInt(raw, "season", "seasonNumber", "seasonNo"),
		ParentSeriesTitle: firstString(raw, "series", "seriesTitle", "parent", "parentTitle", "show"),
		Poster:            resolvePoster(firstString(raw, "poster", "posterUrl", "posterURL", "img", "image", "cover", "thumb"), dir),
		Year:              parseYear(firstString(raw, "year", "releaseYear")),
	}

	for _, field := range []string{"imdbID", "imdbId", "imdb_id", "imdb", "externalId"} {
		if id := cast.ToString(raw[field]); externalIDPattern.MatchString(strings.TrimSpace(id)) {
			item.ExternalID = strings.TrimSpace(id)
			break
		}
	}

	switch seasons := raw["seasons"].(type) {
	case []any:
		item.DeclaredSeasons = len(seasons)
	default:
		item.DeclaredSeasons = max(cast.ToInt(seasons), 0)
	}

	if item.Kind == models.KindSeasonStub && item.RawSeasonNumber <= 0 {
		if m := stubSeasonPattern.FindStringSubmatch(item.Title); m != nil {
			item.RawSeasonNumber, _ = strconv.Atoi(m[1] + m[2])
		}
	}

	if base := firstString(raw, "id", "imdbID", "imdbId", "tmdbId", "slug", "key"); base != "" {
		item.ID = scope + ":" + base
	} else if item.Title != "" {
		seed := fmt.Sprintf("%s:%s:%d:%d", scope, item.Title, item.Year, idx)
		item.ID = scope + ":" + uuid.NewSHA1(itemNamespace, []byte(seed)).String()
	}

	if err := item.Validate(); err != nil {
		return models.CatalogItem{}, err
	}
	return item, nil
}

func itemKind(raw map[string]any) models.ItemKind {
	t := strings.ToLower(firstString(raw, "type", "kind", "mediaType", "format"))
	switch {
	case t == "":
		if cast.ToBool(raw["isSeries"]) {
			return models.KindSeries
		}
		return models.KindMovie
	case strings.Contains(t, "season") || strings.Contains(t, "sezon"):
		return models.KindSeasonStub
	case strings.Contains(t, "series") || strings.Contains(t, "show") || t == "tv" || t == "dizi" || t == "anime":
		return models.KindSeries
	}
	return models.KindMovie
}

// resolvePoster keeps remote and root-relative paths and resolves the rest
// against the franchise directory.
func resolvePoster(p, dir string) string {
	p = strings.TrimSpace(p)
	if p == "" || remoteURLPattern.MatchString(p) || strings.HasPrefix(p, "/") {
		return p
	}
	return path.Join(filepath.ToSlash(dir), strings.TrimPrefix(p, "./"))
}

func parseYear(v string) int {
	year, err := strconv.Atoi(leadingYearPattern.FindString(strings.TrimSpace(v)))
	if err != nil {
		return 0
	}
	return year
}

func firstString(m map[string]any, fields ...string) string {
	for _, field := range fields {
		v, ok := m[field]
		if !ok || v == nil {
			continue
		}
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			return s
		}
	}
	return ""
}

func firstInt(m map[string]any, fields ...string) int {
	for _, field := range fields {
		if n, err := cast.ToIntE(m[field]); err == nil && n > 0 {
			return n
		}
	}
	return 0
}
