package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type EndpointType uint

const (
	EndpointTypeAdh EndpointType = iota
	EndpointTypeEds
	EndpointTypePi
)

func (self *EndpointType) String() (string, error) {
	switch *self {
	case EndpointTypeAdh:
		return "ADH", nil
	case EndpointTypeEds:
		return "EDS", nil
	case EndpointTypePi:
		return "PI", nil
	default:
		return "", fmt.Errorf("Unknown value %d", *self)
	}
}

func (self *EndpointType) FromString(str string) error {
	switch str {
	case "ADH":
		*self = EndpointTypeAdh
	case "OCS":
		// OSIsoft Cloud Services was migrated to AVEVA Data Hub.
		*self = EndpointTypeAdh
	case "EDS":
		*self = EndpointTypeEds
	case "PI":
		*self = EndpointTypePi
	default:
		return fmt.Errorf("Unknown value %q", str)
	}
	return nil
}

func (self *EndpointType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	return self.FromString(str)
}

func (self EndpointType) MarshalJSON() ([]byte, error) {
	if str, err := self.String(); err != nil {
		return nil, err
	} else {
		return json.Marshal(str)
	}
}

type Endpoint struct {
	Name                     string       `json:"Name"`
	Selected                 bool         `json:"Selected"`
	EndpointType             EndpointType `json:"EndpointType"`
	Resource                 string       `json:"Resource"`
	ApiVersion               string       `json:"ApiVersion"`
	TenantId                 string       `json:"TenantId"`
	NamespaceId              string       `json:"NamespaceId"`
	ClientId                 string       `json:"ClientId"`
	ClientSecret             string       `json:"ClientSecret"`
	Username                 string       `json:"Username"`
	Password                 string       `json:"Password"`
	VerifySsl                *bool        `json:"VerifySSL"`
	UseCompression           *bool        `json:"UseCompression"`
	WebRequestTimeoutSeconds *int         `json:"WebRequestTimeoutSeconds"`
}

// BaseEndpoint returns the API root the OMF endpoint hangs off of.
func (self Endpoint) BaseEndpoint() string {
	resource := strings.TrimSuffix(self.Resource, "/")
	switch self.EndpointType {
	case EndpointTypeAdh:
		return fmt.Sprintf("%s/api/%s/tenants/%s/namespaces/%s", resource, self.ApiVersion, self.TenantId, self.NamespaceId)
	case EndpointTypeEds:
		return fmt.Sprintf("%s/api/%s/tenants/default/namespaces/default", resource, self.ApiVersion)
	case EndpointTypePi:
		return resource
	default:
		return resource
	}
}

func (self Endpoint) OmfEndpoint() string {
	return self.BaseEndpoint() + "/omf"
}

func (self Endpoint) ShouldVerifySsl() bool {
	return self.VerifySsl == nil || *self.VerifySsl
}

func (self Endpoint) ShouldCompress() bool {
	return self.UseCompression == nil || *self.UseCompression
}

func (self Endpoint) RequestTimeoutSeconds() int {
	if self.WebRequestTimeoutSeconds == nil {
		return 30
	}
	return *self.WebRequestTimeoutSeconds
}
