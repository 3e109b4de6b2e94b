package builder

import (
	"strings"
	"time"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
)

const (
	DefaultToolVendor  = "idlab-discover"
	DefaultToolName    = "agropredict-cli"
	DefaultToolVersion = "v0.0.0"
)

// PurlNamespace groups every package URL this tool emits.
const PurlNamespace = "agropredict"

// AddMetaSerialNumber gives bom a random urn:uuid serial unless it has one.
func AddMetaSerialNumber(bom *cdx.BOM) {
	if bom.SerialNumber == "" {
		bom.SerialNumber = "urn:uuid:" + uuid.NewString()
	}
}

// AddMetaTimestamp records when the benchmark was exported, in UTC.
// An existing timestamp is kept.
func AddMetaTimestamp(bom *cdx.BOM, now time.Time) {
	if bom.Metadata == nil {
		bom.Metadata = &cdx.Metadata{}
	}
	if bom.Metadata.Timestamp == "" {
		bom.Metadata.Timestamp = now.UTC().Format(time.RFC3339)
	}
}

// AddMetaTools lists the generating tool under metadata.tools. Empty
// arguments fall back to the defaults; a tool already listed under the
// same name is updated instead of duplicated.
func AddMetaTools(bom *cdx.BOM, toolName, toolVersion string) {
	if bom.Metadata == nil {
		bom.Metadata = &cdx.Metadata{}
	}
	if bom.Metadata.Tools == nil {
		bom.Metadata.Tools = &cdx.ToolsChoice{}
	}
	if toolName == "" {
		toolName = DefaultToolName
	}
	if toolVersion == "" {
		toolVersion = DefaultToolVersion
	}

	var tools []cdx.Component
	if bom.Metadata.Tools.Components != nil {
		tools = *bom.Metadata.Tools.Components
	}
	for i := range tools {
		if tools[i].Name == toolName {
			tools[i].Version = toolVersion
			return
		}
	}
	tools = append(tools, cdx.Component{
		Type:         cdx.ComponentTypeApplication,
		Manufacturer: &cdx.OrganizationalEntity{Name: DefaultToolVendor},
		Name:         toolName,
		Version:      toolVersion,
	})
	bom.Metadata.Tools.Components = &tools
}

var purlPaths = map[cdx.ComponentType]string{
	cdx.ComponentTypeMachineLearningModel: "/models/",
	cdx.ComponentTypeData:                 "/datasets/",
	cdx.ComponentTypeApplication:          "/",
}

// GeneratePurl builds a pkg:generic purl for a component type. Models and
// datasets get their own sub-namespace; the application sits at the top.
func GeneratePurl(typ cdx.ComponentType, id, version string) string {
	if id == "" {
		id = "unknown"
	}
	path, ok := purlPaths[typ]
	if !ok {
		path = "/unknown/"
	}
	purl := "pkg:generic/" + PurlNamespace + path + id
	if version != "" {
		purl += "@" + strings.ToLower(version)
	}
	return purl
}

var segmentEscaper = strings.NewReplacer("@", "%40", " ", "%20", "/", "%2F")

// NormalizeSegment percent-encodes @, / and spaces in a purl segment.
func NormalizeSegment(segment string) string {
	return segmentEscaper.Replace(segment)
}

// Slug lowercases a display name and joins its words with dashes, e.g.
// "Random Forest" becomes "random-forest".
func Slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// AddComponentPurl sets PackageURL from the component's type, name and
// version unless one is already present.
func AddComponentPurl(c *cdx.Component) {
	if c == nil || c.PackageURL != "" {
		return
	}
	c.PackageURL = GeneratePurl(c.Type, NormalizeSegment(Slug(c.Name)), NormalizeSegment(strings.TrimSpace(c.Version)))
}

// AddComponentBOMRef uses the purl as bom-ref, or a random urn:uuid when
// the component has none.
func AddComponentBOMRef(c *cdx.Component) {
	if c == nil || c.BOMRef != "" {
		return
	}
	if c.PackageURL != "" {
		c.BOMRef = c.PackageURL
		return
	}
	c.BOMRef = "urn:uuid:" + uuid.NewString()
}
