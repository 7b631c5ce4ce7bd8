package detector_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/portcore/internal/adapters/outbound/detector"
	"github.com/openkraft/portcore/internal/domain"
)

func project(path string, files ...domain.SourceFile) *domain.ParsedProject {
	return &domain.ParsedProject{ProjectPath: path, Files: files}
}

func TestDetector_UsesPrecomputedVector(t *testing.T) {
	p := project("Api/Api.csproj", domain.SourceFile{Path: "a.cs", Usings: []string{"System.Web.Mvc"}})
	p.Features = domain.FeatureVector{domain.FeatureWebApi: true}

	v, err := detector.New().Detect(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, domain.FeatureVector{domain.FeatureWebApi: true}, v)

	v[domain.FeatureMvc] = true
	assert.False(t, p.Features[domain.FeatureMvc], "returned vector is a copy")
}

func TestDetector_InfersFromNamespaces(t *testing.T) {
	tests := []struct {
		name string
		p    *domain.ParsedProject
		want domain.ProjectType
	}{
		{"mvc", project("Web.csproj", domain.SourceFile{Path: "HomeController.cs", Usings: []string{"System.Web.Mvc"}}), domain.ProjectTypeMvc},
		{"webapi", project("Api.csproj", domain.SourceFile{Path: "ValuesController.cs", Usings: []string{"System.Web.Http"}}), domain.ProjectTypeWebApi},
		{"webforms", project("Site.csproj", domain.SourceFile{Path: "Default.aspx"}), domain.ProjectTypeWebForms},
		{"web library", project("Lib.csproj", domain.SourceFile{Path: "Ctx.cs", Usings: []string{"System.Web"}}), domain.ProjectTypeWebClassLibrary},
		{"vb mvc", project("Web.vbproj", domain.SourceFile{Path: "HomeController.vb", Imports: []string{"System.Web.Mvc"}}), domain.ProjectTypeVBNetMvc},
		{"wcf service library", project("Svc.csproj", domain.SourceFile{Path: "Service.svc"}), domain.ProjectTypeWCFServiceLibrary},
		{"wcf config based", project("Svc.csproj",
			domain.SourceFile{Path: "Service.svc"},
			domain.SourceFile{Path: "Global.cs", Usings: []string{"System.ServiceModel.Activation"}},
		), domain.ProjectTypeWCFConfigBasedService},
		{"wcf client", project("Client.csproj", domain.SourceFile{Path: "Proxy.cs", References: []domain.Reference{{Namespace: "System.ServiceModel.ClientBase"}}}), domain.ProjectTypeWCFClient},
		{"plain", project("Core.csproj", domain.SourceFile{Path: "Util.cs", Usings: []string{"System.Linq"}}), domain.ProjectTypeClassLibrary},
	}
	d := detector.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := d.Detect(context.Background(), tt.p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, domain.Classify(v))
		})
	}
}

func TestDetector_DetectMany(t *testing.T) {
	a := project("A.csproj")
	a.Features = domain.FeatureVector{domain.FeatureWCFClient: true}
	b := project("B.csproj", domain.SourceFile{Path: "x.cs", Usings: []string{"System.Web.Http"}})

	got, err := detector.New().DetectMany(context.Background(), []*domain.ParsedProject{a, b})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got["A.csproj"].Has(domain.FeatureWCFClient))
	assert.True(t, got["B.csproj"].Has(domain.FeatureWebApi))
}

func TestDetector_NilProject(t *testing.T) {
	_, err := detector.New().Detect(context.Background(), nil)
	assert.Error(t, err)
}
