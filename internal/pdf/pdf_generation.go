package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"munitask/internal/models"
)

// Generator — interfaz (cómodo de simular en tests)
type Generator interface {
	GenerateTaskSummary(data SummaryData) (string, error)
}

// DocumentGenerator — implementación
type DocumentGenerator struct {
	RootDir  string // raíz de almacenamiento, por ejemplo "./files"
	FontPath string // ruta al TTF, por ejemplo "assets/fonts/DejaVuSans.ttf"
	fontName string // nombre interno de la fuente en el PDF
}

type SummaryData struct {
	Summary     models.TaskSummary
	GeneratedAt time.Time
	Filename    string // nombre de archivo (sin rutas); si está vacío se genera
}

func NewDocumentGenerator(rootDir, fontPath string) *DocumentGenerator {
	return &DocumentGenerator{
		RootDir:  filepath.Clean(rootDir),
		FontPath: fontPath,
		fontName: "DejaVu",
	}
}

var statusLabels = map[models.TaskStatus]string{
	models.StatusPending:    "Pendientes",
	models.StatusInProgress: "En curso",
	models.StatusResolved:   "Resueltas",
}

func (g *DocumentGenerator) GenerateTaskSummary(data SummaryData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("resumen_tareas_%s.pdf", data.GeneratedAt.Format("20060102"))
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Resumen de tareas", false)
	pdf.SetAuthor("Ayuntamiento", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	g.addUTF8Font(pdf)
	pdf.AddPage()

	// ===== Cabecera
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "RESUMEN DE TAREAS", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 12)
	sub := fmt.Sprintf("Generado el %s", data.GeneratedAt.Format("02.01.2006 15:04"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)

	pdf.Ln(3)

	// ===== Totales
	g.sectionTitle(pdf, "Totales")
	g.kvLine(pdf, "Tareas totales", fmt.Sprintf("%d", data.Summary.Total))
	g.kvLine(pdf, "Vencidas", fmt.Sprintf("%d", data.Summary.Overdue))
	pdf.Ln(2)
	g.hr(pdf)

	// ===== Por estado
	g.sectionTitle(pdf, "Por estado")
	for _, st := range []models.TaskStatus{models.StatusPending, models.StatusInProgress, models.StatusResolved} {
		g.kvLine(pdf, statusLabels[st], fmt.Sprintf("%d", data.Summary.ByStatus[st]))
	}
	pdf.Ln(2)
	g.hr(pdf)

	// ===== Por departamento
	g.sectionTitle(pdf, "Por departamento")
	if len(data.Summary.ByDepartment) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.MultiCell(0, 6, "Sin tareas registradas por departamento.", "", "L", false)
	}
	for _, dc := range data.Summary.ByDepartment {
		g.kvLine(pdf, dc.DepartmentName, fmt.Sprintf("%d", dc.Count))
	}

	// ===== Numeración de páginas
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Pág. %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(filepath.Base(absPath)), nil
}

// ===== helpers =====

func (g *DocumentGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *DocumentGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(70, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *DocumentGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *DocumentGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("create files dir: %w", err)
	}
	filename = filepath.Base(filename) // seguridad
	return filepath.Join(g.RootDir, filename), nil
}

func (g *DocumentGenerator) addUTF8Font(pdf *gofpdf.Fpdf) {
	// AddUTF8Font recibe la ruta al TTF
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}
