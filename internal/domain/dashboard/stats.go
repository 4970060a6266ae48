package dashboard

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Trend marks whether a client or provider amount is rising
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// SemaforoState is the colour of a fiscal compliance light
type SemaforoState string

const (
	SemaforoVerde    SemaforoState = "verde"
	SemaforoAmarillo SemaforoState = "amarillo"
	SemaforoRojo     SemaforoState = "rojo"
)

type RevenuePoint struct {
	Mes      string          `json:"mes"`
	Ingresos decimal.Decimal `json:"ingresos"`
	Egresos  decimal.Decimal `json:"egresos"`
}

type CashFlowPoint struct {
	Dia   string          `json:"dia"`
	Saldo decimal.Decimal `json:"saldo"`
}

// Counterparty is a top client or top provider entry
type Counterparty struct {
	Nombre    string          `json:"nombre"`
	RFC       string          `json:"rfc"`
	Monto     decimal.Decimal `json:"monto"`
	Facturas  int             `json:"facturas"`
	Tendencia Trend           `json:"tendencia"`
}

type SemaforoItem struct {
	Nombre            string        `json:"nombre"`
	Estado            SemaforoState `json:"estado"`
	Detalle           string        `json:"detalle"`
	Ejemplo           *string       `json:"ejemplo,omitempty"`
	AccionRecomendada *string       `json:"accion_recomendada,omitempty"`
}

type CategorySlice struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color"`
}

// DashboardStats is the aggregate the backend computes for one company
type DashboardStats struct {
	IngresosMes          decimal.Decimal `json:"ingresos_mes"`
	EgresosMes           decimal.Decimal `json:"egresos_mes"`
	MargenBruto          decimal.Decimal `json:"margen_bruto"`
	HealthScore          int             `json:"health_score"`
	IngresosVariacion    decimal.Decimal `json:"ingresos_variacion"`
	EgresosVariacion     decimal.Decimal `json:"egresos_variacion"`
	MargenVariacion      decimal.Decimal `json:"margen_variacion"`
	ScoreVariacion       decimal.Decimal `json:"score_variacion"`
	RevenueData          []RevenuePoint  `json:"revenue_data"`
	CashFlowData         []CashFlowPoint `json:"cash_flow_data"`
	TopClientes          []Counterparty  `json:"top_clientes"`
	TopProveedores       []Counterparty  `json:"top_proveedores"`
	IngresosPorCategoria []CategorySlice `json:"ingresos_por_categoria"`
	Semaforo             []SemaforoItem  `json:"semaforo"`
	TotalCFDIs           int             `json:"total_cfdis"`
	LastSync             *string         `json:"last_sync"`
}

// Clone copies the slices so the published snapshot stays immutable
func (s *DashboardStats) Clone() *DashboardStats {
	if s == nil {
		return nil
	}
	out := *s
	out.RevenueData = slices.Clone(s.RevenueData)
	out.CashFlowData = slices.Clone(s.CashFlowData)
	out.TopClientes = slices.Clone(s.TopClientes)
	out.TopProveedores = slices.Clone(s.TopProveedores)
	out.IngresosPorCategoria = slices.Clone(s.IngresosPorCategoria)
	out.Semaforo = slices.Clone(s.Semaforo)
	out.LastSync = cloneString(s.LastSync)
	return &out
}

// CountByState returns how many semaforo lights are in the given state
func (s *DashboardStats) CountByState(state SemaforoState) int {
	if s == nil {
		return 0
	}
	n := 0
	for _, item := range s.Semaforo {
		if item.Estado == state {
			n++
		}
	}
	return n
}

// ScoreComponent is one weighted term of the health score
type ScoreComponent struct {
	Nombre string          `json:"nombre"`
	Valor  decimal.Decimal `json:"valor"`
	Peso   string          `json:"peso"`
}

// HealthScore is the breakdown returned by the health-score endpoint
type HealthScore struct {
	ScoreTotal  int              `json:"score_total"`
	Componentes []ScoreComponent `json:"componentes"`
	Periodo     *string          `json:"periodo"`
}
