package domain

import "fmt"

// The version of the OMF messages.
const OmfVersion = "1.1"

type MessageType string

const (
	MessageTypeType      MessageType = "type"
	MessageTypeContainer MessageType = "container"
	MessageTypeData      MessageType = "data"
)

func (self MessageType) String() string {
	return string(self)
}

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

func (self Action) String() string {
	return string(self)
}

type Classification string

const (
	ClassificationStatic  Classification = "static"
	ClassificationDynamic Classification = "dynamic"
)

type Property struct {
	Type        string `json:"type,omitempty"`
	Format      string `json:"format,omitempty"`
	IsIndex     bool   `json:"isindex,omitempty"`
	IsName      bool   `json:"isname,omitempty"`
	Uom         string `json:"uom,omitempty"`
	Description string `json:"description,omitempty"`
}

type Type struct {
	Id             string              `json:"id"`
	Name           string              `json:"name,omitempty"`
	Classification Classification      `json:"classification"`
	Type           string              `json:"type"`
	Description    string              `json:"description,omitempty"`
	Properties     map[string]Property `json:"properties"`
}

type Container struct {
	Id          string `json:"id"`
	Name        string `json:"name,omitempty"`
	TypeId      string `json:"typeid"`
	Description string `json:"description,omitempty"`
}

// Data carries values either for a static type (TypeId set)
// or for a container of a dynamic type (ContainerId set).
type Data struct {
	TypeId      string           `json:"typeid,omitempty"`
	ContainerId string           `json:"containerid,omitempty"`
	Values      []map[string]any `json:"values"`
}

// LinkTypeId is the well-known typeid of AF link data messages.
const LinkTypeId = "__Link"

type LinkEnd struct {
	TypeId      string `json:"typeid,omitempty"`
	Index       string `json:"index,omitempty"`
	ContainerId string `json:"containerid,omitempty"`
}

type Link struct {
	Source LinkEnd `json:"source"`
	Target LinkEnd `json:"target"`
}

func LinkData(links ...Link) Data {
	values := make([]map[string]any, 0, len(links))
	for _, link := range links {
		values = append(values, map[string]any{
			"source": link.Source,
			"target": link.Target,
		})
	}
	return Data{TypeId: LinkTypeId, Values: values}
}

type BuildInfoType struct {
	Version string
	Commit  string
}

var BuildInfo BuildInfoType

func (self BuildInfoType) String() string {
	return fmt.Sprintf("%s (%s)", self.Version, self.Commit)
}
