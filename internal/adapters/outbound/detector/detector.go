package detector

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/openkraft/portcore/internal/domain"
)

// Detector implements domain.FeatureDetector. Analyzer dumps that already
// carry a feature vector are used as is; otherwise the vector is inferred
// from referenced namespaces and file extensions.
type Detector struct{}

func New() *Detector {
	return &Detector{}
}

// signal is one heuristic: a feature holds when any namespace has one of the
// prefixes or any file has one of the extensions.
type signal struct {
	feature    string
	namespaces []string
	extensions []string
}

var signals = []signal{
	{feature: domain.FeatureMvc, namespaces: []string{"System.Web.Mvc"}},
	{feature: domain.FeatureWebApi, namespaces: []string{"System.Web.Http"}},
	{feature: domain.FeatureWebForms, namespaces: []string{"System.Web.UI"}, extensions: []string{".aspx", ".ascx", ".master"}},
	{feature: domain.FeatureWebClassLibrary, namespaces: []string{"System.Web"}},
	{feature: domain.FeatureWCFConfigBasedService, extensions: []string{".svc"}},
	{feature: domain.FeatureWCFServiceHostReference, namespaces: []string{"System.ServiceModel.Activation", "System.ServiceModel.ServiceHost"}},
	{feature: domain.FeatureWCFCodeBasedService, namespaces: []string{"System.ServiceModel.Description"}},
	{feature: domain.FeatureWCFClient, namespaces: []string{"System.ServiceModel.ClientBase"}},
}

// vbFeatures maps a C#-flavoured feature to its VB counterpart.
var vbFeatures = map[string]string{
	domain.FeatureMvc:             domain.FeatureVBNetMvc,
	domain.FeatureWebForms:        domain.FeatureVBWebForms,
	domain.FeatureWebApi:          domain.FeatureVBWebApi,
	domain.FeatureWebClassLibrary: domain.FeatureVBClassLibrary,
}

// Detect returns the feature vector of one project.
func (d *Detector) Detect(_ context.Context, project *domain.ParsedProject) (domain.FeatureVector, error) {
	if project == nil {
		return nil, fmt.Errorf("detector: nil project")
	}
	if project.Features != nil {
		out := make(domain.FeatureVector, len(project.Features))
		for k, v := range project.Features {
			out[k] = v
		}
		return out, nil
	}
	return infer(project), nil
}

// DetectMany returns vectors keyed by project path.
func (d *Detector) DetectMany(ctx context.Context, projects []*domain.ParsedProject) (map[string]domain.FeatureVector, error) {
	out := make(map[string]domain.FeatureVector, len(projects))
	for _, p := range projects {
		v, err := d.Detect(ctx, p)
		if err != nil {
			return nil, err
		}
		out[p.ProjectPath] = v
	}
	return out, nil
}

func infer(project *domain.ParsedProject) domain.FeatureVector {
	refs := domain.ExtractReferences(project)
	exts := map[string]bool{}
	for _, f := range project.Files {
		exts[strings.ToLower(filepath.Ext(f.Path))] = true
	}

	v := domain.FeatureVector{}
	for _, s := range signals {
		if matchesNamespace(refs, s.namespaces) || matchesExtension(exts, s.extensions) {
			v[s.feature] = true
		}
	}
	// System.Web.Mvc also matches the System.Web prefix
	if v[domain.FeatureMvc] || v[domain.FeatureWebApi] || v[domain.FeatureWebForms] {
		delete(v, domain.FeatureWebClassLibrary)
	}
	if isVB(project, exts) {
		for cs, vb := range vbFeatures {
			if v[cs] {
				delete(v, cs)
				v[vb] = true
			}
		}
	}
	return v
}

func matchesNamespace(refs domain.ReferenceSet, prefixes []string) bool {
	for ref := range refs {
		for _, p := range prefixes {
			if ref == p || strings.HasPrefix(ref, p+".") {
				return true
			}
		}
	}
	return false
}

func matchesExtension(exts map[string]bool, want []string) bool {
	for _, e := range want {
		if exts[e] {
			return true
		}
	}
	return false
}

func isVB(project *domain.ParsedProject, exts map[string]bool) bool {
	switch strings.ToLower(project.Language) {
	case "vb", "vb.net", "visualbasic":
		return true
	}
	return strings.EqualFold(filepath.Ext(project.ProjectPath), ".vbproj") || exts[".vb"]
}
