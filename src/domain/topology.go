package domain

import "time"

const (
	TemperatureTypeId      = "Temperature.Float"
	TemperatureContainerId = "Sample.Script.SL6658.Temperature"

	RootAssetTypeId = "RemoteAssets.RootType"
	PumpAssetTypeId = "RemoteAssets.FuelPumpType"

	RootAssetIndex = "RemoteAssets.Pumps.Root"
	PumpAssetIndex = "RemoteAssets.Pump.SL6658"
)

type Reading struct {
	Timestamp time.Time
	Value     float64
}

func (self Reading) ToData() Data {
	return Data{
		ContainerId: TemperatureContainerId,
		Values: []map[string]any{{
			"Timestamp":   self.Timestamp.UTC().Format(time.RFC3339Nano),
			"Temperature": self.Value,
		}},
	}
}

// Topology is the asset model registered before any readings flow:
// static asset types, the dynamic temperature type, the container
// holding the measurements, the asset instances and the AF links
// tying them together.
type Topology struct {
	Types      []Type
	Containers []Container
	Assets     []Data
}

func SampleTopology() Topology {
	return Topology{
		Types: []Type{
			{
				Id:             RootAssetTypeId,
				Classification: ClassificationStatic,
				Type:           "object",
				Description:    "Root remote asset type",
				Properties: map[string]Property{
					"index": {Type: "string", IsIndex: true},
					"name":  {Type: "string", IsName: true},
				},
			},
			{
				Id:             PumpAssetTypeId,
				Classification: ClassificationStatic,
				Type:           "object",
				Description:    "Remote pump asset type",
				Properties: map[string]Property{
					"index":       {Type: "string", IsIndex: true},
					"name":        {Type: "string", IsName: true},
					"Description": {Type: "string", Description: "Description of the asset"},
					"Location":    {Type: "string", Description: "Location of the asset"},
				},
			},
			{
				Id:             TemperatureTypeId,
				Name:           "Temperature Float Type",
				Classification: ClassificationDynamic,
				Type:           "object",
				Properties: map[string]Property{
					"Timestamp":   {Type: "string", Format: "date-time", IsIndex: true},
					"Temperature": {Type: "number", Description: "Temperature readings", Uom: "°F"},
				},
			},
		},
		Containers: []Container{
			{
				Id:          TemperatureContainerId,
				Name:        "Temperature",
				TypeId:      TemperatureTypeId,
				Description: "Container holds temperature measurements",
			},
		},
		Assets: []Data{
			{
				TypeId: RootAssetTypeId,
				Values: []map[string]any{{
					"index": RootAssetIndex,
					"name":  "Remote Fuel Pumps",
				}},
			},
			{
				TypeId: PumpAssetTypeId,
				Values: []map[string]any{{
					"index":       PumpAssetIndex,
					"name":        "SL6658 Pump",
					"Description": "Fuel pump asset",
					"Location":    "SLTC, San Leandro, California",
				}},
			},
			LinkData(
				Link{
					Source: LinkEnd{TypeId: RootAssetTypeId, Index: RootAssetIndex},
					Target: LinkEnd{TypeId: PumpAssetTypeId, Index: PumpAssetIndex},
				},
				Link{
					Source: LinkEnd{TypeId: PumpAssetTypeId, Index: PumpAssetIndex},
					Target: LinkEnd{ContainerId: TemperatureContainerId},
				},
			),
		},
	}
}
