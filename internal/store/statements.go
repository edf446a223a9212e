package store

// Statements holds the command text for every data access operation. On SQL
// Server a bare procedure name is executed as a stored procedure call.
type Statements struct {
	LastSyncDate     string
	BusinessProcess  string
	ListRecords      string
	SyncRecord       string
	Disable          string
	AlertLoad        string
	Recipients       string
	DelinquencyData  string
	InactiveData     string
	ParametersGet    string
	ParametersUpdate string
}

// DefaultStatements returns the production SQL Server procedures.
func DefaultStatements() Statements {
	return Statements{
		LastSyncDate:     "SELECT MAX(fecha_ultima_sinc) FROM dbo.sincronizacion_control WHERE codigo_proceso = @processCode",
		BusinessProcess:  "Sp_DbDatos_Arrendamiento_Pos_Business",
		ListRecords:      "Comercios.Sp_Arrendamiento_Lista_gete",
		SyncRecord:       "Sp_DbDatos_Arrendamiento_Pos_Synchronize",
		Disable:          "Sp_DbDatos_Arrendamiento_Pos_Disable",
		AlertLoad:        "Sp_DbDatos_Arrendamiento_Pos_Alert_Load",
		Recipients:       "Mensajeria.Sp_Destination_Emails_Get",
		DelinquencyData:  "Sp_DbDatos_Arrendamiento_Pos_Alert_Get",
		InactiveData:     "Sp_DbDatos_Arrendamiento_Pos_Disconnect_Get",
		ParametersGet:    "Sistemas.Sp_Parameters_Get",
		ParametersUpdate: "Sistemas.Sp_Parameters_Update",
	}
}
