package builder

import cdx "github.com/CycloneDX/cyclonedx-go"

// AddDependencies builds the dependency graph: the application (metadata
// component) depends on every model, and every model depends on every data
// component it was trained on. Data components are leaf nodes.
func AddDependencies(bom *cdx.BOM) {
	if bom == nil {
		return
	}

	var appRef string
	if bom.Metadata != nil && bom.Metadata.Component != nil {
		appRef = bom.Metadata.Component.BOMRef
	}
	if appRef == "" {
		return
	}

	var modelRefs, dataRefs []string
	if bom.Components != nil {
		for _, comp := range *bom.Components {
			if comp.BOMRef == "" {
				continue
			}
			switch comp.Type {
			case cdx.ComponentTypeMachineLearningModel:
				modelRefs = append(modelRefs, comp.BOMRef)
			case cdx.ComponentTypeData:
				dataRefs = append(dataRefs, comp.BOMRef)
			}
		}
	}

	deps := make([]cdx.Dependency, 0, 1+len(modelRefs)+len(dataRefs))

	appDep := cdx.Dependency{Ref: appRef}
	if len(modelRefs) > 0 {
		cp := append([]string(nil), modelRefs...)
		appDep.Dependencies = &cp
	}
	deps = append(deps, appDep)

	for _, ref := range modelRefs {
		dep := cdx.Dependency{Ref: ref}
		if len(dataRefs) > 0 {
			cp := append([]string(nil), dataRefs...)
			dep.Dependencies = &cp
		}
		deps = append(deps, dep)
	}
	for _, ref := range dataRefs {
		deps = append(deps, cdx.Dependency{Ref: ref})
	}

	bom.Dependencies = &deps
}
