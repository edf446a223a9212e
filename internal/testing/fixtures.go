package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/posleasing/leasesync/internal/domain"
)

// NewLeaseFixtures returns three lease records in enumeration order
func NewLeaseFixtures() []domain.LeaseRecord {
	return []domain.LeaseRecord{
		{Retailer: "100200", ParentRetailer: "100200", Consolidate: false, Amount: decimal.RequireFromString("150.00"), DeviceCount: 1},
		{Retailer: "100201", ParentRetailer: "100200", Consolidate: true, Amount: decimal.RequireFromString("300.50"), DeviceCount: 2},
		{Retailer: "100305", ParentRetailer: "100305", Consolidate: false, Amount: decimal.RequireFromString("75.25"), DeviceCount: 1},
	}
}

// NewDelinquencyFixtures returns one record for each delinquency band
func NewDelinquencyFixtures() []domain.DelinquencyRecord {
	start := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.DelinquencyRecord{
		{Bank: "BI", Retailer: "100200", Name: "Ferreteria El Martillo", Pending: 1, Month: "01/2024", Devices: 1, Status: "Activo"},
		{Bank: "BI", Retailer: "100201", Name: "Farmacia San Jose", Pending: 2, Month: "12/2023", Devices: 2, Status: "Activo"},
		{Bank: "BAM", Retailer: "100305", Name: "Panaderia La Espiga", Pending: 4, Month: "10/2023", Devices: 1, Status: "Suspendido"},
	}
	for i := range rows {
		rows[i].No = i + 1
		rows[i].Start = start
		rows[i].Amount = decimal.RequireFromString("150.00")
		rows[i].Balance = decimal.NewFromInt(int64(150 * rows[i].Pending))
		rows[i].Credits = decimal.Zero
		rows[i].ChargebackDebits = decimal.Zero
		rows[i].LeaseDebits = decimal.RequireFromString("150.00")
		rows[i].MaxPayment = decimal.RequireFromString("1200.75")
	}
	return rows
}

// NewInactiveFixtures returns two inactive merchants
func NewInactiveFixtures() []domain.InactiveRecord {
	start := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	withdrawal := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return []domain.InactiveRecord{
		{No: 1, Bank: "BI", Retailer: "200100", Name: "Libreria Central", Amount: decimal.RequireFromString("150.00"), Balance: decimal.RequireFromString("450.00"), Pending: 3, Start: start, Withdrawal: withdrawal, Devices: 1, Status: "Inactivo"},
		{No: 2, Bank: "BAM", Retailer: "200101", Name: "Zapateria Moderna", Amount: decimal.RequireFromString("300.00"), Balance: decimal.Zero, Pending: 0, Start: start, Withdrawal: withdrawal, Devices: 2, Status: "Inactivo"},
	}
}
