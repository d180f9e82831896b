package diagram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Spec is the optional input data for Build. Each type reads its own section.
type Spec struct {
	Steps     []Step     `yaml:"steps" toml:"steps"`
	Lanes     []Lane     `yaml:"lanes" toml:"lanes"`
	Flows     []Flow     `yaml:"flows" toml:"flows"`
	Tables    []Table    `yaml:"tables" toml:"tables"`
	Relations []Relation `yaml:"relations" toml:"relations"`
	Matrix    *AccessMap `yaml:"matrix" toml:"matrix"`
	Tasks     []Task     `yaml:"tasks" toml:"tasks"`
	Phases    []Phase    `yaml:"phases" toml:"phases"`
}

// Step is a process flow node. Kind is one of start, end, process, decision,
// user, system, data or document; anything else is drawn as process.
type Step struct {
	ID    string `yaml:"id" toml:"id"`
	Label string `yaml:"label" toml:"label"`
	Kind  string `yaml:"kind" toml:"kind"`
	Next  []Link `yaml:"next" toml:"next"`
}

// Link is an outgoing process edge with an optional label.
type Link struct {
	To    string `yaml:"to" toml:"to"`
	Label string `yaml:"label" toml:"label"`
}

// Lane is one actor of a swimlane flow.
type Lane struct {
	Name  string     `yaml:"name" toml:"name"`
	Color string     `yaml:"color" toml:"color"`
	Steps []LaneStep `yaml:"steps" toml:"steps"`
}

// LaneStep is a step inside a lane.
type LaneStep struct {
	ID    string `yaml:"id" toml:"id"`
	Label string `yaml:"label" toml:"label"`
}

// Flow connects two lane steps.
type Flow struct {
	From  string `yaml:"from" toml:"from"`
	To    string `yaml:"to" toml:"to"`
	Label string `yaml:"label" toml:"label"`
}

// Table is an ERD entity.
type Table struct {
	Name    string   `yaml:"name" toml:"name"`
	Color   string   `yaml:"color" toml:"color"`
	Columns []Column `yaml:"columns" toml:"columns"`
}

// Column is a table column. Key is PK, FK or empty.
type Column struct {
	Name string `yaml:"name" toml:"name"`
	Type string `yaml:"type" toml:"type"`
	Key  string `yaml:"key" toml:"key"`
}

// Relation is a many-to-one link from a referencing table to a referenced one.
type Relation struct {
	From  string `yaml:"from" toml:"from"`
	To    string `yaml:"to" toml:"to"`
	Label string `yaml:"label" toml:"label"`
}

// AccessMap holds a permission per role (row) and entity (column).
type AccessMap struct {
	Roles       []string   `yaml:"roles" toml:"roles"`
	Entities    []string   `yaml:"entities" toml:"entities"`
	Permissions [][]string `yaml:"permissions" toml:"permissions"`
}

// Task is a Gantt bar; Start and Duration are in weeks.
type Task struct {
	Name     string  `yaml:"name" toml:"name"`
	Start    float64 `yaml:"start" toml:"start"`
	Duration float64 `yaml:"duration" toml:"duration"`
	Category string  `yaml:"category" toml:"category"`
}

// Phase is one timeline stage.
type Phase struct {
	Name     string   `yaml:"name" toml:"name"`
	Duration string   `yaml:"duration" toml:"duration"`
	Items    []string `yaml:"items" toml:"items"`
	Color    string   `yaml:"color" toml:"color"`
}

// LoadSpec reads a spec file. The format follows the extension: .yaml, .yml
// and .json are decoded as YAML, .toml as TOML.
func LoadSpec(path string) (*Spec, error) {
	var spec Spec

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml", ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read spec: %w", err)
		}
		parsed, err := ParseSpec(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse spec %s: %w", path, err)
		}
		return parsed, nil
	case ".toml":
		if _, err := toml.DecodeFile(path, &spec); err != nil {
			return nil, fmt.Errorf("failed to parse spec %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported spec format %q (use .yaml, .yml, .json or .toml)", ext)
	}

	return &spec, nil
}

// ParseSpec decodes a YAML or JSON spec document.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Spec) stepsOrDefault() []Step {
	if len(s.Steps) > 0 {
		return s.Steps
	}
	return []Step{
		{ID: "start", Label: "Start", Kind: "start", Next: []Link{{To: "step1"}}},
		{ID: "step1", Label: "User Action", Kind: "user", Next: []Link{{To: "step2"}}},
		{ID: "step2", Label: "System Process", Kind: "system", Next: []Link{{To: "decide"}}},
		{ID: "decide", Label: "Valid?", Kind: "decision", Next: []Link{{To: "step3", Label: "Yes"}, {To: "error", Label: "No"}}},
		{ID: "step3", Label: "Save Data", Kind: "data", Next: []Link{{To: "end"}}},
		{ID: "error", Label: "Handle Error", Kind: "process", Next: []Link{{To: "end"}}},
		{ID: "end", Label: "End", Kind: "end"},
	}
}

// lanesOrDefault returns the lanes and flows to draw. Default flows only
// accompany the default lanes.
func (s *Spec) lanesOrDefault() ([]Lane, []Flow) {
	if len(s.Lanes) > 0 {
		return s.Lanes, s.Flows
	}
	lanes := []Lane{
		{Name: "User", Color: "#F3E5F5", Steps: []LaneStep{
			{ID: "u1", Label: "Submit Request"},
			{ID: "u2", Label: "Review Result"},
		}},
		{Name: "System", Color: "#E3F2FD", Steps: []LaneStep{
			{ID: "s1", Label: "Validate Input"},
			{ID: "s2", Label: "Process Data"},
			{ID: "s3", Label: "Store Result"},
		}},
	}
	flows := []Flow{
		{From: "u1", To: "s1"},
		{From: "s1", To: "s2"},
		{From: "s2", To: "s3"},
		{From: "s3", To: "u2"},
	}
	return lanes, flows
}

// tablesOrDefault returns the tables and relations to draw. Default relations
// only accompany the default tables.
func (s *Spec) tablesOrDefault() ([]Table, []Relation) {
	if len(s.Tables) > 0 {
		return s.Tables, s.Relations
	}
	tables := []Table{
		{Name: "Documents", Color: "#4472C4", Columns: []Column{
			{Name: "DocumentId", Type: "INT", Key: "PK"},
			{Name: "AccountId", Type: "INT", Key: "FK"},
			{Name: "Title", Type: "NVARCHAR(255)"},
			{Name: "CreatedDate", Type: "DATETIME2"},
			{Name: "CreatedBy", Type: "INT", Key: "FK"},
		}},
		{Name: "Accounts", Color: "#548235", Columns: []Column{
			{Name: "AccountId", Type: "INT", Key: "PK"},
			{Name: "AccountRef", Type: "VARCHAR(50)"},
			{Name: "Status", Type: "VARCHAR(20)"},
		}},
		{Name: "Users", Color: "#BF9000", Columns: []Column{
			{Name: "UserId", Type: "INT", Key: "PK"},
			{Name: "Email", Type: "NVARCHAR(200)"},
			{Name: "RoleId", Type: "INT", Key: "FK"},
		}},
	}
	relations := []Relation{
		{From: "Documents", To: "Accounts"},
		{From: "Documents", To: "Users"},
	}
	return tables, relations
}

func (s *Spec) matrixOrDefault() AccessMap {
	if s.Matrix != nil && len(s.Matrix.Roles) > 0 {
		return *s.Matrix
	}
	return AccessMap{
		Roles:    []string{"Admin", "Manager", "User", "Guest"},
		Entities: []string{"Documents", "Accounts", "Users", "Settings"},
		Permissions: [][]string{
			{"CRUD", "CRUD", "CRUD", "CRUD"},
			{"CRUD", "CRU", "R", "R"},
			{"CRU", "R", "-", "-"},
			{"R", "-", "-", "-"},
		},
	}
}

func (s *Spec) tasksOrDefault() []Task {
	if len(s.Tasks) > 0 {
		return s.Tasks
	}
	return []Task{
		{Name: "Discovery", Start: 0, Duration: 2, Category: "Planning"},
		{Name: "Environment Setup", Start: 1, Duration: 2, Category: "Development"},
		{Name: "Core Development", Start: 2, Duration: 6, Category: "Development"},
		{Name: "Integration", Start: 6, Duration: 3, Category: "Development"},
		{Name: "Testing", Start: 8, Duration: 3, Category: "Testing"},
		{Name: "Data Migration", Start: 9, Duration: 2, Category: "Migration"},
		{Name: "UAT", Start: 10, Duration: 2, Category: "Testing"},
		{Name: "Training", Start: 11, Duration: 1, Category: "Training"},
		{Name: "Go-Live", Start: 12, Duration: 1, Category: "Deployment"},
	}
}

func (s *Spec) phasesOrDefault() []Phase {
	if len(s.Phases) > 0 {
		return s.Phases
	}
	return []Phase{
		{Name: "Phase 1\nDiscovery", Duration: "2 weeks", Items: []string{"Requirements", "Design"}, Color: "#4472C4"},
		{Name: "Phase 2\nBuild", Duration: "6 weeks", Items: []string{"Development", "Integration"}, Color: "#ED7D31"},
		{Name: "Phase 3\nTest", Duration: "3 weeks", Items: []string{"Testing", "UAT"}, Color: "#70AD47"},
		{Name: "Phase 4\nDeploy", Duration: "2 weeks", Items: []string{"Migration", "Go-Live"}, Color: "#FFC000"},
	}
}
