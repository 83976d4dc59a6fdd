package model

// WeeksHeader is the exact header row of the weeks table. Column order is
// part of the persisted contract.
var WeeksHeader = []string{
	"Trabajo", "Tipo_semana", "Semana_inicio",
	"Día", "Fecha", "Entrada", "Inicio break", "Fin break", "Salida", "Horas",
}

// Column indexes into a weeks row.
const (
	ColJob = iota
	ColConvention
	ColWeekStart
	ColDay
	ColDate
	ColClockIn
	ColBreakStart
	ColBreakEnd
	ColClockOut
	ColHours
)

// JobsHeader is written to an empty jobs table. The jobs table header is
// free-form; only the second column carries data.
var JobsHeader = []string{"", "Trabajo"}

// ColJobName is the jobs table column holding the job name.
const ColJobName = 1
