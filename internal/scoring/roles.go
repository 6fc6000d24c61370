package scoring

import (
	"sort"
	"strings"

	"github.com/spigell/skillfit/internal/skills"
)

// RoleProfile is a named set of required skills.
type RoleProfile struct {
	Name   string     `json:"name"`
	Skills skills.Set `json:"skills"`
}

// Table is a read-only collection of roles in declaration order.
type Table struct {
	roles []RoleProfile
	index map[string]int
}

// defaultRoles is the built-in role table.
//
//nolint:gochecknoglobals
var defaultRoles = []struct {
	name   string
	skills []string
}{
	{"Data Scientist", []string{"python", "sql", "machine learning", "statistics", "pandas", "numpy"}},
	{"Data Engineer", []string{"python", "sql", "spark", "airflow", "etl", "data pipelines"}},
	{"Data Analyst", []string{"sql", "excel", "power bi", "tableau", "statistics"}},
	{"Analytics Engineer", []string{"sql", "dbt", "data modeling", "etl"}},
	{"AI Engineer", []string{"python", "deep learning", "model deployment", "mlops"}},
	{"ML Engineer", []string{"python", "mlops", "docker", "kubernetes"}},
	{"GenAI Specialist", []string{"llms", "prompt engineering", "rag", "vector databases"}},
	{"LLM Developer", []string{"transformers", "huggingface", "langchain", "python"}},
	{"Software Engineer", []string{"java", "python", "data structures", "algorithms", "system design"}},
	{"Backend Engineer", []string{"java", "spring", "apis", "microservices", "databases"}},
	{"Frontend Engineer", []string{"react", "javascript", "html", "css"}},
	{"Full Stack Engineer", []string{"react", "node", "apis", "databases"}},
	{"DevOps Engineer", []string{"ci/cd", "docker", "kubernetes", "aws", "linux"}},
	{"Cloud Engineer", []string{"aws", "azure", "gcp"}},
	{"SRE", []string{"monitoring", "linux", "incident management", "automation"}},
	{"Test Engineer", []string{"test automation", "selenium", "qa"}},
	{"QA Engineer", []string{"manual testing", "automation", "test cases"}},
	{"Tech Support Engineer", []string{"troubleshooting", "linux", "networking"}},
	{"Support Engineer", []string{"incident handling", "ticketing systems"}},
}

// DefaultTable returns the built-in role table.
func DefaultTable() *Table {
	roles := make([]RoleProfile, 0, len(defaultRoles))
	for _, r := range defaultRoles {
		roles = append(roles, RoleProfile{Name: r.name, Skills: skills.CanonicalSet(r.skills...)})
	}
	return NewTable(roles)
}

// NewTable builds a table. Later duplicates of a role name replace earlier ones.
func NewTable(roles []RoleProfile) *Table {
	t := &Table{index: make(map[string]int, len(roles))}
	for _, role := range roles {
		key := roleKey(role.Name)
		if i, ok := t.index[key]; ok {
			t.roles[i] = role
			continue
		}
		t.index[key] = len(t.roles)
		t.roles = append(t.roles, role)
	}
	return t
}

// Lookup finds a role by name, ignoring case and surrounding whitespace.
func (t *Table) Lookup(name string) (RoleProfile, bool) {
	if t == nil {
		return RoleProfile{}, false
	}
	i, ok := t.index[roleKey(name)]
	if !ok {
		return RoleProfile{}, false
	}
	return t.roles[i], true
}

// Names returns role names in declaration order.
func (t *Table) Names() []string {
	if t == nil {
		return nil
	}
	out := make([]string, 0, len(t.roles))
	for _, role := range t.roles {
		out = append(out, role.Name)
	}
	return out
}

// Roles returns a copy of the roles in declaration order.
func (t *Table) Roles() []RoleProfile {
	if t == nil {
		return nil
	}
	return append([]RoleProfile(nil), t.roles...)
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.roles)
}

// SortedNames returns role names alphabetically.
func (t *Table) SortedNames() []string {
	names := t.Names()
	sort.Strings(names)
	return names
}

func roleKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
