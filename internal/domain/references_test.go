package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/openkraft/portcore/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractReferences_DedupesAndDropsEmpty(t *testing.T) {
	project := &domain.ParsedProject{
		ProjectPath: "web/Web.csproj",
		Files: []domain.SourceFile{{
			Path:       "Controllers/HomeController.cs",
			Usings:     []string{"System", "System.Web.Mvc", ""},
			References: []domain.Reference{{Namespace: "System.Web.Mvc"}},
		}},
	}

	refs := domain.ExtractReferences(project)
	assert.Equal(t, []string{"System", "System.Web.Mvc"}, refs.Sorted())
	assert.Equal(t, 2, refs.Len())
}

func TestExtractReferences_UnionsAllSourcesAcrossFiles(t *testing.T) {
	project := &domain.ParsedProject{
		Files: []domain.SourceFile{
			{Path: "a.cs", Usings: []string{"System.Linq"}},
			{Path: "b.vb", Imports: []string{"Microsoft.VisualBasic"}},
			{Path: "c.cs", References: []domain.Reference{{Namespace: "Newtonsoft.Json", Assembly: "Newtonsoft.Json"}, {Namespace: ""}}},
		},
	}

	refs := domain.ExtractReferences(project)
	assert.ElementsMatch(t, []string{"System.Linq", "Microsoft.VisualBasic", "Newtonsoft.Json"}, refs.Sorted())
}

func TestExtractReferences_NilProject(t *testing.T) {
	assert.Equal(t, 0, domain.ExtractReferences(nil).Len())
}

func TestExtractReferences_NullFromJSON(t *testing.T) {
	var project domain.ParsedProject
	raw := `{"project_path":"p","files":[{"path":"x.cs","usings":["System","System.Web.Mvc",null],"references":[{"namespace":"System.Web.Mvc"}]}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &project))

	refs := domain.ExtractReferences(&project)
	assert.Equal(t, []string{"System", "System.Web.Mvc"}, refs.Sorted())
}

func TestReferenceSet_UnionAndJSON(t *testing.T) {
	a := domain.NewReferenceSet("b", "a")
	a.Union(domain.NewReferenceSet("c", "a"))
	assert.True(t, a.Has("c"))

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b","c"]`, string(data))

	var back domain.ReferenceSet
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, a, back)
}

func TestRuleFileName_Lowercases(t *testing.T) {
	assert.Equal(t, "system.web.mvc.json", domain.RuleFileName("System.Web.Mvc"))
	assert.Equal(t, "project.all.json", domain.RuleFileName(domain.ProjectRecommendationFile))
}
