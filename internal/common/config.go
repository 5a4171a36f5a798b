package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Paths PathsConfig
	Watch WatchSettings
	Units map[string]OperatingUnit
	// DefaultUnit names the operating unit used when none is requested.
	DefaultUnit string
}

// PathsConfig holds shared file locations
type PathsConfig struct {
	UploadDir   string
	KPILedger   string
	RateTable   string
	HistoryDB   string
}

// WatchSettings holds drop-folder watcher configuration
type WatchSettings struct {
	Debounce time.Duration
}

// ColumnMap holds the 1-indexed target columns of the export template.
// The billing system consumes a fixed layout, so these are per-unit data,
// not code.
type ColumnMap struct {
	ClientCode   int `yaml:"client_code"`
	Provider     int `yaml:"provider"`
	ServiceDate  int `yaml:"service_date"`
	Project      int `yaml:"project"`
	Route        int `yaml:"route"`
	DownloadDate int `yaml:"download_date"`
	WorkedHours  int `yaml:"worked_hours"`
	ClientPrice  int `yaml:"client_price"`
	DriverNote   int `yaml:"driver_note"`
	Plate        int `yaml:"plate"`
	Trailer      int `yaml:"trailer"`
	CostQty      int `yaml:"cost_qty"`
	CostUnit     int `yaml:"cost_unit"`
	CostAmount   int `yaml:"cost_amount"`
}

// OperatingUnit bundles everything site-specific about one logistics
// operation: template, master files, routes and their client prices.
// Instances are treated as immutable once loaded.
type OperatingUnit struct {
	ID                string             `yaml:"id"`
	Label             string             `yaml:"label"`
	TemplatePath      string             `yaml:"template"`
	SheetName         string             `yaml:"sheet"`
	DriverMasterPath  string             `yaml:"driver_master"`
	VehicleMasterPath string             `yaml:"vehicle_master"`
	OutputPath        string             `yaml:"output"`
	DefaultRoute      string             `yaml:"default_route"`
	Routes            []string           `yaml:"routes"`
	RoutePrices       map[string]float64 `yaml:"route_prices"`
	ClientCode        int                `yaml:"client_code"`
	Project           string             `yaml:"project"`
	TrailerRef        string             `yaml:"trailer_ref"`
	Columns           ColumnMap          `yaml:"columns"`
}

type fileConfig struct {
	UploadDir   string                   `yaml:"upload_dir"`
	KPILedger   string                   `yaml:"kpi_ledger"`
	RateTable   string                   `yaml:"rate_table"`
	HistoryDB   string                   `yaml:"history_db"`
	DefaultUnit string                   `yaml:"default_unit"`
	Units       map[string]OperatingUnit `yaml:"units"`
}

// DefaultColumns is the layout of the stock billing template.
func DefaultColumns() ColumnMap {
	return ColumnMap{
		ClientCode:   1,
		Provider:     2,
		ServiceDate:  4,
		Project:      9,
		Route:        10,
		DownloadDate: 18,
		WorkedHours:  31,
		ClientPrice:  32,
		DriverNote:   33,
		Plate:        34,
		Trailer:      35,
		CostQty:      38,
		CostUnit:     39,
		CostAmount:   40,
	}
}

func defaultPatioUnit() OperatingUnit {
	return OperatingUnit{
		ID:                "PATIO_ECI",
		Label:             "PATIO ECI (Valdemoro)",
		TemplatePath:      "plantilla_patio.xlsx",
		SheetName:         "PLANTILLA",
		DriverMasterPath:  "maestro_matriculas.xlsx",
		VehicleMasterPath: "maestro_vehiculos.xlsx",
		OutputPath:        "salida_meribia.xlsx",
		DefaultRoute:      "V429",
		Routes:            []string{"V429", "V429.1", "V429.2"},
		RoutePrices:       map[string]float64{"V429": 32, "V429.1": 48, "V429.2": 29},
		ClientCode:        2,
		Project:           "V429",
		TrailerRef:        "M111111",
		Columns:           DefaultColumns(),
	}
}

// LoadConfig loads configuration from environment variables, layered under
// an optional yaml file named by SHIFTBILL_CONFIG.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Paths: PathsConfig{
			UploadDir: getEnv("UPLOAD_DIR", "uploads"),
			KPILedger: getEnv("KPI_LEDGER", "kpis_facturacion.csv"),
			RateTable: getEnv("RATE_TABLE", "proveedores_master.csv"),
			HistoryDB: getEnv("HISTORY_DB", "runs.db"),
		},
		Watch: WatchSettings{
			Debounce: getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
		},
		Units:       map[string]OperatingUnit{"PATIO_ECI": defaultPatioUnit()},
		DefaultUnit: "PATIO_ECI",
	}

	if path := os.Getenv("SHIFTBILL_CONFIG"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, WrapError(err, "loading config file")
		}
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return err
	}
	if fc.UploadDir != "" {
		c.Paths.UploadDir = fc.UploadDir
	}
	if fc.KPILedger != "" {
		c.Paths.KPILedger = fc.KPILedger
	}
	if fc.RateTable != "" {
		c.Paths.RateTable = fc.RateTable
	}
	if fc.HistoryDB != "" {
		c.Paths.HistoryDB = fc.HistoryDB
	}
	if fc.DefaultUnit != "" {
		c.DefaultUnit = fc.DefaultUnit
	}
	for id, u := range fc.Units {
		if u.ID == "" {
			u.ID = id
		}
		if u.SheetName == "" {
			u.SheetName = "PLANTILLA"
		}
		if u.Columns == (ColumnMap{}) {
			u.Columns = DefaultColumns()
		}
		c.Units[id] = u
	}
	return nil
}

// Unit resolves an operating unit by id, falling back to the default unit
// when the id is empty or unknown.
func (c *Config) Unit(id string) (OperatingUnit, error) {
	if id == "" {
		id = c.DefaultUnit
	}
	u, ok := c.Units[id]
	if !ok {
		u, ok = c.Units[c.DefaultUnit]
		if !ok {
			return OperatingUnit{}, NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown operating unit %q", id), ErrInvalidInput)
		}
	}
	return u, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if len(c.Units) == 0 {
		return NewAppError("CONFIG_ERROR", "at least one operating unit is required", ErrInvalidInput)
	}
	if _, ok := c.Units[c.DefaultUnit]; !ok {
		return NewAppError("CONFIG_ERROR", "default_unit does not name a configured unit", ErrInvalidInput)
	}
	for id, u := range c.Units {
		if u.TemplatePath == "" {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("unit %s: template path is required", id), ErrInvalidInput)
		}
		if u.DefaultRoute == "" {
			return NewAppError("CONFIG_ERROR", fmt.Sprintf("unit %s: default route is required", id), ErrInvalidInput)
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
