// Copyright 2023 Gustavo C. Viegas. All rights reserved.

package engine

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Resource location types.
const (
	LocationFileSystem = "FileSystem"
	LocationZip        = "Zip"
)

// location is a directory or archive holding resources.
type location struct {
	name   string
	typ    string
	fsys   fs.FS
	closer io.Closer
}

type resourceGroup struct {
	name      string
	locations []*location
	ready     bool
	// File name to location, first location wins.
	index map[string]*location
}

// ResourceGroupManager maps resource file names to the
// locations that hold them. Locations are searched only
// after their group was initialised.
type ResourceGroupManager struct {
	log       *slog.Logger
	materials *MaterialManager
	groups    []*resourceGroup
}

func newResourceGroupManager(log *slog.Logger, materials *MaterialManager) *ResourceGroupManager {
	return &ResourceGroupManager{log: log, materials: materials}
}

func (rm *ResourceGroupManager) group(name string) *resourceGroup {
	for _, g := range rm.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

// CreateResourceGroup creates an empty group. Groups are
// also created implicitly by AddResourceLocation.
func (rm *ResourceGroupManager) CreateResourceGroup(name string) error {
	if rm.group(name) != nil {
		return wrapName(ErrDuplicateName, name)
	}
	rm.groups = append(rm.groups, &resourceGroup{name: name})
	return nil
}

// ResourceGroups returns the group names in creation
// order.
func (rm *ResourceGroupManager) ResourceGroups() []string {
	s := make([]string, len(rm.groups))
	for i, g := range rm.groups {
		s[i] = g.name
	}
	return s
}

// AddResourceLocation adds a location of type locType
// (LocationFileSystem or LocationZip) to group.
// An empty group means DefaultGroup. A directory that
// does not exist is skipped with a log message, so
// alternative locations can be listed.
func (rm *ResourceGroupManager) AddResourceLocation(name, locType, group string) error {
	if group == "" {
		group = DefaultGroup
	}
	g := rm.group(group)
	if g == nil {
		g = &resourceGroup{name: group}
		rm.groups = append(rm.groups, g)
	}
	for _, l := range g.locations {
		if l.name == name && l.typ == locType {
			return nil
		}
	}
	loc := &location{name: name, typ: locType}
	switch locType {
	case LocationFileSystem:
		fi, err := os.Stat(name)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			rm.log.Info("resource location missing, skipped", "name", name, "group", group)
			return nil
		case err != nil:
			return fmt.Errorf("engine: resource location: %w", err)
		case !fi.IsDir():
			return fmt.Errorf("engine: resource location %q is not a directory", name)
		}
		loc.fsys = os.DirFS(name)
	case LocationZip:
		zr, err := zip.OpenReader(name)
		if err != nil {
			return fmt.Errorf("engine: resource location: %w", err)
		}
		loc.fsys = zr
		loc.closer = zr
	default:
		return fmt.Errorf("%w: %q", ErrUnknownArchive, locType)
	}
	g.locations = append(g.locations, loc)
	if g.ready {
		rm.indexLocation(g, loc)
	}
	rm.log.Debug("resource location added", "name", name, "type", locType, "group", group)
	return nil
}

// indexLocation records the files at the top level of loc.
func (rm *ResourceGroupManager) indexLocation(g *resourceGroup, loc *location) {
	ents, err := fs.ReadDir(loc.fsys, ".")
	if err != nil {
		rm.log.Warn("cannot list resource location", "name", loc.name, "err", err)
		return
	}
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		if prev, dup := g.index[e.Name()]; dup {
			rm.log.Debug("resource shadowed", "file", e.Name(), "by", prev.name, "in", loc.name)
			continue
		}
		g.index[e.Name()] = loc
	}
}

// InitialiseAllResourceGroups initialises every group
// that is not initialised yet, in creation order.
func (rm *ResourceGroupManager) InitialiseAllResourceGroups() error {
	for _, g := range rm.groups {
		if g.ready {
			continue
		}
		if err := rm.initialise(g); err != nil {
			return err
		}
	}
	return nil
}

// InitialiseResourceGroup indexes the locations of the
// named group and parses its material scripts.
func (rm *ResourceGroupManager) InitialiseResourceGroup(name string) error {
	g := rm.group(name)
	if g == nil {
		return fmt.Errorf("engine: resource group %q does not exist", name)
	}
	if g.ready {
		return nil
	}
	return rm.initialise(g)
}

func (rm *ResourceGroupManager) initialise(g *resourceGroup) error {
	g.index = make(map[string]*location)
	for _, loc := range g.locations {
		rm.indexLocation(g, loc)
	}
	var scripts []string
	for name := range g.index {
		if strings.EqualFold(path.Ext(name), ".material") {
			scripts = append(scripts, name)
		}
	}
	sort.Strings(scripts)

	parsed := make([]*materialScript, len(scripts))
	var eg errgroup.Group
	for i, name := range scripts {
		eg.Go(func() error {
			f, err := g.index[name].fsys.Open(name)
			if err != nil {
				return fmt.Errorf("engine: %w", err)
			}
			defer f.Close()
			s, err := parseScript(f, name, g.name)
			if err != nil {
				return err
			}
			parsed[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for _, s := range parsed {
		if err := s.apply(rm.materials); err != nil {
			return err
		}
	}
	g.ready = true
	rm.log.Info("resource group initialised", "group", g.name,
		"locations", len(g.locations), "files", len(g.index), "scripts", len(scripts))
	return nil
}

// IsInitialised reports whether the named group was
// initialised.
func (rm *ResourceGroupManager) IsInitialised(group string) bool {
	g := rm.group(group)
	return g != nil && g.ready
}

// find returns the location holding name. An empty group
// searches every initialised group.
func (rm *ResourceGroupManager) find(name, group string) (*location, error) {
	if group != "" {
		g := rm.group(group)
		if g == nil || !g.ready {
			return nil, fmt.Errorf("%w: resource group %q", ErrNotInitialised, group)
		}
		if loc, ok := g.index[name]; ok {
			return loc, nil
		}
		return nil, wrapName(ErrFileNotFound, name)
	}
	ready := false
	for _, g := range rm.groups {
		if !g.ready {
			continue
		}
		ready = true
		if loc, ok := g.index[name]; ok {
			return loc, nil
		}
	}
	if !ready {
		return nil, fmt.Errorf("%w: no resource group", ErrNotInitialised)
	}
	return nil, wrapName(ErrFileNotFound, name)
}

// Open opens the named resource file of group. An empty
// group searches every initialised group in creation
// order.
func (rm *ResourceGroupManager) Open(name, group string) (io.ReadCloser, error) {
	loc, err := rm.find(name, group)
	if err != nil {
		return nil, err
	}
	f, err := loc.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}
	return f, nil
}

// Exists reports whether Open would find the file.
func (rm *ResourceGroupManager) Exists(name, group string) bool {
	_, err := rm.find(name, group)
	return err == nil
}

// close releases archive locations.
func (rm *ResourceGroupManager) close() {
	for _, g := range rm.groups {
		for _, loc := range g.locations {
			if loc.closer != nil {
				loc.closer.Close()
			}
		}
	}
	rm.groups = nil
}
