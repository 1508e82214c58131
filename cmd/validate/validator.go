package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jwebster45206/npc-dialogue/pkg/actor"
)

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

// PersonaValidator checks persona documents under <contentDir>/npcs.
type PersonaValidator struct {
	errors []string
}

// validateFile checks one persona file and returns the decoded persona.
func (v *PersonaValidator) validateFile(filename string) (*actor.Persona, error) {
	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return nil, fmt.Errorf("persona file must have .json extension: %s", baseName)
	}

	id := strings.TrimSuffix(baseName, ".json")
	if !validIDRegex.MatchString(id) {
		return nil, fmt.Errorf("persona filename '%s' must be lowercase snake_case (e.g., tavern_keeper_01.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var p actor.Persona
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	v.errors = nil
	if p.ID != "" && p.ID != id {
		v.addError(fmt.Sprintf("id %q does not match filename %q", p.ID, id))
	}
	p.ID = id
	if err := p.Validate(); err != nil {
		v.addError(err.Error())
	}

	if len(v.errors) > 0 {
		return nil, fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return &p, nil
}

// validateContent checks every persona in contentDir. It returns the valid
// personas sorted by id and one error per invalid file.
func (v *PersonaValidator) validateContent(contentDir string) ([]*actor.Persona, []error) {
	files, err := filepath.Glob(filepath.Join(contentDir, "npcs", "*.json"))
	if err != nil {
		return nil, []error{err}
	}
	if len(files) == 0 {
		return nil, []error{fmt.Errorf("no persona files found in %s", filepath.Join(contentDir, "npcs"))}
	}
	sort.Strings(files)

	var personas []*actor.Persona
	var errs []error
	for _, file := range files {
		p, err := v.validateFile(file)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		personas = append(personas, p)
	}
	return personas, errs
}

func (v *PersonaValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
