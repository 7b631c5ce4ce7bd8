package domain

// ClassificationRule is one row of the classifier's priority table.
// When Refine is set, the row yields Type if the refining feature also holds
// and Otherwise if it does not.
type ClassificationRule struct {
	Feature   string
	Type      ProjectType
	Refine    string
	Otherwise ProjectType
}

func (r ClassificationRule) resolve(v FeatureVector) ProjectType {
	if r.Refine == "" || v.Has(r.Refine) {
		return r.Type
	}
	return r.Otherwise
}

// classificationOrder is evaluated top to bottom; predicates overlap, so the
// order is part of the contract.
var classificationOrder = []ClassificationRule{
	{Feature: FeatureVBNetMvc, Type: ProjectTypeVBNetMvc},
	{Feature: FeatureVBWebForms, Type: ProjectTypeVBWebForms},
	{Feature: FeatureVBWebApi, Type: ProjectTypeVBWebApi},
	{Feature: FeatureVBClassLibrary, Type: ProjectTypeVBClassLibrary},
	{Feature: FeatureMvc, Type: ProjectTypeMvc},
	{Feature: FeatureWebApi, Type: ProjectTypeWebApi},
	{Feature: FeatureWebForms, Type: ProjectTypeWebForms},
	{Feature: FeatureWebClassLibrary, Type: ProjectTypeWebClassLibrary},
	{
		Feature:   FeatureWCFConfigBasedService,
		Type:      ProjectTypeWCFConfigBasedService,
		Refine:    FeatureWCFServiceHostReference,
		Otherwise: ProjectTypeWCFServiceLibrary,
	},
	{Feature: FeatureWCFCodeBasedService, Type: ProjectTypeWCFCodeBasedService},
	{Feature: FeatureWCFClient, Type: ProjectTypeWCFClient},
}

// ClassificationOrder returns a copy of the classifier's priority table.
func ClassificationOrder() []ClassificationRule {
	out := make([]ClassificationRule, len(classificationOrder))
	copy(out, classificationOrder)
	return out
}

// Classify maps a feature vector to exactly one project type. The first row
// whose feature is present wins; ClassLibrary is the fallback.
func Classify(v FeatureVector) ProjectType {
	for _, rule := range classificationOrder {
		if v.Has(rule.Feature) {
			return rule.resolve(v)
		}
	}
	return ProjectTypeClassLibrary
}
