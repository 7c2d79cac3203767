package config

import "fmt"

// PropertySources ordered list of property sources
// Index 0 has the highest precedence. Adding a source whose name already exists
// removes the old entry first, so the last write wins.
// PropertySources is not safe for concurrent use; Environment guards it.
type PropertySources struct {
	list []PropertySource
}

// NewPropertySources creates an empty list
func NewPropertySources() *PropertySources {
	return &PropertySources{list: make([]PropertySource, 0, 8)}
}

// AddFirst adds a source with the highest precedence
func (p *PropertySources) AddFirst(source PropertySource) {
	p.removeIfPresent(source.Name())
	p.list = append([]PropertySource{source}, p.list...)
}

// AddLast adds a source with the lowest precedence
func (p *PropertySources) AddLast(source PropertySource) {
	p.removeIfPresent(source.Name())
	p.list = append(p.list, source)
}

// AddBefore adds a source with precedence immediately higher than anchor
func (p *PropertySources) AddBefore(anchor string, source PropertySource) error {
	if err := p.assertLegalRelativeAddition(anchor, source); err != nil {
		return err
	}
	p.removeIfPresent(source.Name())
	idx := p.indexOf(anchor)
	if idx < 0 {
		return fmt.Errorf("property source %q does not exist", anchor)
	}
	p.insertAt(idx, source)
	return nil
}

// AddAfter adds a source with precedence immediately lower than anchor
func (p *PropertySources) AddAfter(anchor string, source PropertySource) error {
	if err := p.assertLegalRelativeAddition(anchor, source); err != nil {
		return err
	}
	p.removeIfPresent(source.Name())
	idx := p.indexOf(anchor)
	if idx < 0 {
		return fmt.Errorf("property source %q does not exist", anchor)
	}
	p.insertAt(idx+1, source)
	return nil
}

// Replace swaps the source registered under name, keeping its position
func (p *PropertySources) Replace(name string, source PropertySource) error {
	idx := p.indexOf(name)
	if idx < 0 {
		return fmt.Errorf("property source %q does not exist", name)
	}
	p.list[idx] = source
	return nil
}

// Remove removes and returns the named source (nil when absent)
func (p *PropertySources) Remove(name string) PropertySource {
	idx := p.indexOf(name)
	if idx < 0 {
		return nil
	}
	removed := p.list[idx]
	p.list = append(p.list[:idx], p.list[idx+1:]...)
	return removed
}

// Get returns the named source
func (p *PropertySources) Get(name string) (PropertySource, bool) {
	idx := p.indexOf(name)
	if idx < 0 {
		return nil, false
	}
	return p.list[idx], true
}

// Contains reports whether a source with the given name exists
func (p *PropertySources) Contains(name string) bool {
	return p.indexOf(name) >= 0
}

// Names source names in precedence order
func (p *PropertySources) Names() []string {
	names := make([]string, len(p.list))
	for i, s := range p.list {
		names[i] = s.Name()
	}
	return names
}

// Sources copy of the list in precedence order
func (p *PropertySources) Sources() []PropertySource {
	out := make([]PropertySource, len(p.list))
	copy(out, p.list)
	return out
}

// Len number of sources
func (p *PropertySources) Len() int {
	return len(p.list)
}

func (p *PropertySources) indexOf(name string) int {
	for i, s := range p.list {
		if s.Name() == name {
			return i
		}
	}
	return -1
}

func (p *PropertySources) insertAt(idx int, source PropertySource) {
	p.list = append(p.list, nil)
	copy(p.list[idx+1:], p.list[idx:])
	p.list[idx] = source
}

func (p *PropertySources) removeIfPresent(name string) {
	p.Remove(name)
}

func (p *PropertySources) assertLegalRelativeAddition(anchor string, source PropertySource) error {
	if anchor == source.Name() {
		return fmt.Errorf("property source %q cannot be added relative to itself", anchor)
	}
	return nil
}
