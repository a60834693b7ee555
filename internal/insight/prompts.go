package insight

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/andresuchdata/ppic-monitor/internal/domain"
)

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"hours": formatHours,
	"get":   func(m map[string]string, k string) string { return m[k] },
	"deref": func(s *string) string {
		if s == nil {
			return "-"
		}
		return *s
	},
}).Parse(`
{{define "part"}}You are an experienced PPIC (production planning and inventory control) specialist. Analyse the following component in depth.

Selected component:
- Part: {{get .Row.Values "PART NUMBER / PART NAME"}}
- Warehouse stock (WH1): {{get .Row.Values "STOCK WH1"}} units
- Work in progress (WIP): {{get .Row.Values "WIP"}} units
- Monthly plan (PLAN): {{get .Row.Values "PLAN"}} units
- Predicted criticality (model): {{deref .Row.PredictedCriticality}}
- Stock status (model): {{deref .Row.StockStatus}}

Tasks:
1. Give a short assessment of this part: safe, needs watching, or in danger.
2. If the criticality is High or Medium, explain the risk and list the mitigation steps the warehouse or purchasing team must take now.
3. If the stock status is Anomali, explain what the anomaly means for stock and WIP and give clear investigation instructions.
4. Give one improvement suggestion for managing this part going forward.
5. Use markdown bullet points.

Answer in {{.Language}}.{{end}}

{{define "holistic"}}You are a senior operations manager leading the morning meeting. Based on the stock health summary below, give sharp strategic insight and recommendations.

Today's stock health summary:
- Components monitored: {{.Dashboard.KPI.TotalParts}}
- Components in deficit (stock below requirement): {{.Dashboard.KPI.DeficitCount}}
- Components in surplus: {{.Dashboard.KPI.SurplusCount}}
- Most critical components (largest deficit):
{{range .TopParts}}  - {{.PartNumber}} {{.PartName}} ({{.Type}}): {{.StockHealth}}
{{end}}- Average stock health per type:
{{range .Dashboard.SummaryByType}}  - {{.Type}}: avg {{.AvgStockHealth}} over {{.PartCount}} parts
{{end}}
Tasks:
1. Open with an overall conclusion about stock health. What is the biggest risk right now?
2. Focus on the two or three most critical components and give specific urgent instructions to the PPIC team for each.
3. Look at the per-type summary. Is any type consistently problematic? Recommend what to investigate.
4. Give one long-term recommendation to reduce the number of components in deficit.
5. Be firm, professional and to the point. Use markdown.

Answer in {{.Language}}.{{end}}

{{define "simulation"}}You are a PPIC analyst reviewing a what-if simulation for one component.

- Destination section: {{.Result.Observation.Section}}
- Component: {{.Result.Observation.Component}}
- Simulated available stock: {{.Result.Observation.AvailableStock}} units
- Consumption rate: {{.Result.Observation.ConsumptionRate}} units per hour
- Estimated lead time: {{hours .Result.Observation.LeadTime}}
- Time until stock runs out: {{hours .Result.Assessment.DepletionTime}}
- Buffer time: {{hours .Result.Assessment.BufferTime}}
- Status: {{.Result.Assessment.Status}}

Explain what this means for the production line, list concrete actions for the section and the sending warehouse, and say when the situation should be re-checked. Use markdown.

Answer in {{.Language}}.{{end}}
`))

const topPartsInPrompt = 5

func render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", name, err)
	}
	return buf.String(), nil
}

func PartPrompt(row domain.MonitoringRow, language string) (string, error) {
	return render("part", struct {
		Row      domain.MonitoringRow
		Language string
	}{row, language})
}

func HolisticPrompt(dashboard domain.MeetingDashboard, language string) (string, error) {
	top := dashboard.TopCriticalParts
	if len(top) > topPartsInPrompt {
		top = top[:topPartsInPrompt]
	}
	return render("holistic", struct {
		Dashboard domain.MeetingDashboard
		TopParts  []domain.PartStockHealth
		Language  string
	}{dashboard, top, language})
}

func SimulationPrompt(result domain.SimulationResult, language string) (string, error) {
	return render("simulation", struct {
		Result   domain.SimulationResult
		Language string
	}{result, language})
}

func formatHours(v interface{}) string {
	var h float64
	switch x := v.(type) {
	case domain.Hours:
		h = float64(x)
	case float64:
		h = x
	default:
		return fmt.Sprint(v)
	}
	if domain.Hours(h).IsInf() {
		return "never (no consumption)"
	}
	return fmt.Sprintf("%.1f hours", h)
}
