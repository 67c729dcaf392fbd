package testutil

// MaizeModel is a trimmed-down model file shaped like the engine's bundled
// Maize example: two simulations, a four-layer soil, a sowing manager, a
// report and a cultivar.
const MaizeModel = `{
  "$type": "Models.Core.Simulations, Models",
  "ExplorerWidth": 300,
  "Version": 176,
  "Name": "Simulations",
  "ResourceName": null,
  "Children": [
    {
      "$type": "Models.Storage.DataStore, Models",
      "useFirebird": false,
      "CustomFileName": null,
      "Name": "DataStore",
      "ResourceName": null,
      "Children": [],
      "Enabled": true,
      "ReadOnly": false
    },
    {
      "$type": "Models.Core.Simulation, Models",
      "Descriptors": null,
      "Name": "Simulation",
      "ResourceName": null,
      "Children": [
        {
          "$type": "Models.Clock, Models",
          "Start": "1990-01-01T00:00:00",
          "End": "2000-12-31T00:00:00",
          "Name": "Clock",
          "ResourceName": null,
          "Children": [],
          "Enabled": true,
          "ReadOnly": false
        },
        {
          "$type": "Models.Summary, Models",
          "Verbosity": 100,
          "Name": "Summary",
          "ResourceName": null,
          "Children": [],
          "Enabled": true,
          "ReadOnly": false
        },
        {
          "$type": "Models.Climate.Weather, Models",
          "ConstantsFile": null,
          "FileName": "%root%/Examples/WeatherFiles/AU_Dalby.met",
          "ExcelWorkSheetName": "",
          "Name": "Weather",
          "ResourceName": null,
          "Children": [],
          "Enabled": true,
          "ReadOnly": false
        },
        {
          "$type": "Models.Core.Zone, Models",
          "Area": 1.0,
          "Slope": 0.0,
          "AspectAngle": 0.0,
          "Altitude": 50.0,
          "Name": "Field",
          "ResourceName": null,
          "Children": [
            {
              "$type": "Models.Report, Models",
              "VariableNames": [
                "[Clock].Today",
                "[Maize].Phenology.CurrentStageName",
                "[Maize].Grain.Total.Wt*10 as Yield"
              ],
              "EventNames": [
                "[Maize].Harvesting"
              ],
              "GroupByVariableName": null,
              "Name": "Report",
              "ResourceName": null,
              "Children": [],
              "Enabled": true,
              "ReadOnly": false
            },
            {
              "$type": "Models.Soils.Soil, Models",
              "RecordNumber": 0,
              "ASCOrder": "Vertosol",
              "Site": "Dalby",
              "Latitude": -27.18,
              "Longitude": 151.26,
              "Name": "Soil",
              "ResourceName": null,
              "Children": [
                {
                  "$type": "Models.Soils.Physical, Models",
                  "Depth": ["0-150", "150-300", "300-600", "600-900"],
                  "Thickness": [150.0, 150.0, 300.0, 300.0],
                  "ParticleSizeClay": null,
                  "BD": [1.01, 1.03, 1.02, 1.02],
                  "AirDry": [0.13, 0.199, 0.28, 0.28],
                  "LL15": [0.261, 0.248, 0.28, 0.306],
                  "DUL": [0.521, 0.496, 0.488, 0.48],
                  "SAT": [0.589, 0.565, 0.567, 0.566],
                  "KS": [null, null, null, null],
                  "Name": "Physical",
                  "ResourceName": null,
                  "Children": [
                    {
                      "$type": "Models.Soils.SoilCrop, Models",
                      "LL": [0.261, 0.248, 0.28, 0.306],
                      "KL": [0.06, 0.06, 0.06, 0.06],
                      "XF": [1.0, 1.0, 1.0, 1.0],
                      "Name": "MaizeSoil",
                      "ResourceName": null,
                      "Children": [],
                      "Enabled": true,
                      "ReadOnly": false
                    }
                  ],
                  "Enabled": true,
                  "ReadOnly": false
                },
                {
                  "$type": "Models.WaterModel.WaterBalance, Models",
                  "SummerDate": "1-Nov",
                  "SummerU": 5.0,
                  "SummerCona": 5.0,
                  "WinterDate": "1-Apr",
                  "WinterU": 5.0,
                  "WinterCona": 5.0,
                  "DiffusConst": 40.0,
                  "DiffusSlope": 16.0,
                  "Salb": 0.12,
                  "CN2Bare": 73.0,
                  "CNRed": 20.0,
                  "CNCov": 0.8,
                  "Thickness": [150.0, 150.0, 300.0, 300.0],
                  "SWCON": [0.3, 0.3, 0.3, 0.3],
                  "KLAT": null,
                  "Name": "SoilWater",
                  "ResourceName": "WaterBalance",
                  "Children": [],
                  "Enabled": true,
                  "ReadOnly": false
                },
                {
                  "$type": "Models.Soils.Organic, Models",
                  "Depth": ["0-150", "150-300", "300-600", "600-900"],
                  "FOMCNRatio": 40.0,
                  "Thickness": [150.0, 150.0, 300.0, 300.0],
                  "Carbon": [1.2, 0.96, 0.6, 0.3],
                  "CarbonUnits": 0,
                  "SoilCNRatio": [12.0, 12.0, 12.0, 12.0],
                  "FBiom": [0.04, 0.02, 0.02, 0.02],
                  "FInert": [0.4, 0.6, 0.8, 1.0],
                  "FOM": [347.1, 270.3, 164.0, 99.5],
                  "Name": "Organic",
                  "ResourceName": null,
                  "Children": [],
                  "Enabled": true,
                  "ReadOnly": false
                },
                {
                  "$type": "Models.Soils.Chemical, Models",
                  "Depth": ["0-150", "150-300", "300-600", "600-900"],
                  "Thickness": [150.0, 150.0, 300.0, 300.0],
                  "PH": [8.0, 8.0, 8.0, 8.0],
                  "PHUnits": 0,
                  "EC": null,
                  "ESP": null,
                  "CEC": null,
                  "Name": "Chemical",
                  "ResourceName": null,
                  "Children": [],
                  "Enabled": true,
                  "ReadOnly": false
                }
              ],
              "Enabled": true,
              "ReadOnly": false
            },
            {
              "$type": "Models.Manager, Models",
              "CodeArray": ["// script body omitted"],
              "Parameters": [
                {"Key": "CultivarName", "Value": "Dekalb_XL82"},
                {"Key": "SowingDate", "Value": "1-nov"},
                {"Key": "Population", "Value": "6"},
                {"Key": "RowSpacing", "Value": "750"}
              ],
              "Name": "Sow using a variable rule",
              "ResourceName": null,
              "Children": [],
              "Enabled": true,
              "ReadOnly": false
            },
            {
              "$type": "Models.PMF.Cultivar, Models",
              "Command": [
                "[Phenology].Juvenile.Target.FixedValue = 210",
                "[Grain].MaximumGrainsPerCob.FixedValue = 700"
              ],
              "Name": "Dekalb_XL82",
              "ResourceName": null,
              "Children": [],
              "Enabled": true,
              "ReadOnly": false
            }
          ],
          "Enabled": true,
          "ReadOnly": false
        }
      ],
      "Enabled": true,
      "ReadOnly": false
    },
    {
      "$type": "Models.Core.Simulation, Models",
      "Descriptors": null,
      "Name": "LateSowing",
      "ResourceName": null,
      "Children": [
        {
          "$type": "Models.Clock, Models",
          "Start": "1995-01-01T00:00:00",
          "End": "2000-12-31T00:00:00",
          "Name": "Clock",
          "ResourceName": null,
          "Children": [],
          "Enabled": true,
          "ReadOnly": false
        },
        {
          "$type": "Models.Core.Zone, Models",
          "Area": 1.0,
          "Name": "Field",
          "ResourceName": null,
          "Children": [],
          "Enabled": true,
          "ReadOnly": false
        }
      ],
      "Enabled": true,
      "ReadOnly": false
    }
  ],
  "Enabled": true,
  "ReadOnly": false
}`
