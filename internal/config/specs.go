package config

import "statfeed/domain/cube"

// EraCodes maps provider series codes to output column names, split by the
// exchange-rate provider era.
type EraCodes struct {
	Legacy  map[string]string
	Current map[string]string
}

// FXCodes names the exchange-rate series fetched from each era.
var FXCodes = EraCodes{
	Legacy: map[string]string{
		"IEXM0102_AVG": "USD/CAD",
		"EUROCAM01":    "EUR/CAD",
	},
	Current: map[string]string{
		"FXMUSDCAD": "USD/CAD",
		"FXMEURCAD": "EUR/CAD",
	},
}

// LabourForceSpec selects seasonally adjusted employment and unemployment
// rates for Canada.
var LabourForceSpec = cube.Spec{
	cube.Entry("Geography", "Canada"),
	cube.Entry("Labour force characteristics", "Employment rate", "Unemployment rate"),
	cube.Entry("Data type", "Seasonally adjusted"),
	cube.Entry("Statistics", "Estimate"),
	cube.Entry("Gender", "Total - Gender"),
	cube.Entry("Age group", "15 years and over"),
}

// FuelTypesSpec selects the pump prices of interest. The geography entry is
// derived at fetch time from the cube's own catalogue (every geography
// except the national aggregate), so it is not listed here.
var FuelTypesSpec = cube.Entry("Type of fuel",
	"Regular unleaded gasoline at self service filling stations",
	"Diesel fuel at self service filling stations",
)

// TradeSpec selects seasonally adjusted customs-basis price indexes for the
// farm, fishing and intermediate food products group.
var TradeSpec = cube.Spec{
	cube.Entry("Geography", "Canada"),
	cube.Entry("Trade", "Import", "Export"),
	cube.Entry("Basis", "Customs"),
	cube.Entry("Seasonal adjustment", "Seasonally adjusted"),
	cube.Entry("Index", "Price index"),
	cube.Entry("Weighting", "Laspeyres fixed weighted"),
	cube.Entry("North American Product Classification System (NAPCS)", "Farm, fishing and intermediate food products"),
}

// CPISpec selects the food consumer price index for Canada.
var CPISpec = cube.Spec{
	cube.Entry("Geography", "Canada"),
	cube.Entry("Products and product groups", "Food"),
}
