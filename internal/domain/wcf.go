package domain

// ProjectRecommendationFile is the marker reference every project carries so
// the project-level rule resource is always fetched.
const ProjectRecommendationFile = "project.all"

// CoreWCFRules are shared by every WCF service subtype.
var CoreWCFRules = []string{
	"CoreWCF.Primitives",
	"CoreWCF.Http",
	"CoreWCF.NetTcp",
}

const (
	CoreWCFConfigBasedProjectRule    = "CoreWCF.ConfigBasedProject"
	CoreWCFCodeBasedProjectRule      = "CoreWCF.CodeBasedProject"
	CoreWCFServiceLibraryProjectRule = "CoreWCF.ServiceLibraryProject"
	WCFClientProjectRule             = "WCF.ClientProject"
)

var wcfServiceRules = map[ProjectType]string{
	ProjectTypeWCFConfigBasedService: CoreWCFConfigBasedProjectRule,
	ProjectTypeWCFCodeBasedService:   CoreWCFCodeBasedProjectRule,
	ProjectTypeWCFServiceLibrary:     CoreWCFServiceLibraryProjectRule,
}

// AugmentWCF appends the WCF rule resources implied by the configuration's
// project type. Names already present are not appended twice.
func AugmentWCF(cfg *ProjectConfiguration) {
	if cfg == nil {
		return
	}
	if rule, ok := wcfServiceRules[cfg.ProjectType]; ok {
		cfg.AdditionalReferences = appendMissing(cfg.AdditionalReferences, CoreWCFRules...)
		cfg.AdditionalReferences = appendMissing(cfg.AdditionalReferences, rule)
		return
	}
	if cfg.ProjectType == ProjectTypeWCFClient {
		cfg.AdditionalReferences = appendMissing(cfg.AdditionalReferences, WCFClientProjectRule)
	}
}

// AddProjectRecommendation makes sure the marker reference is configured.
func AddProjectRecommendation(cfg *ProjectConfiguration) {
	cfg.AdditionalReferences = appendMissing(cfg.AdditionalReferences, ProjectRecommendationFile)
}

func appendMissing(list []string, items ...string) []string {
	for _, it := range items {
		found := false
		for _, existing := range list {
			if existing == it {
				found = true
				break
			}
		}
		if !found {
			list = append(list, it)
		}
	}
	return list
}
