package document

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"fridge-chef/internal/pkg/common"
)

// PDFRenderer HTML 轉 PDF 的外部服務，需允許讀取本機檔案
type PDFRenderer interface {
	Render(ctx context.Context, html, outputPath string) error
}

const documentTemplates = `
{{define "fragment"}}<div class='recipe'>
    <h2>{{.Title}}{{if .Emoji}} {{.Emoji}}{{end}}</h2>
    {{if .ImageSrc}}<img src="{{.ImageSrc}}" />{{end}}
    <div class='nutrition-info'>
        <p style='font-weight: bold;'>Nutrition Information:</p>
        <p>Calories: {{.Nutrition.Calories}}</p>
        <p>Protein: {{.Nutrition.Protein}}</p>
        <p>Carbohydrates: {{.Nutrition.Carbohydrates}}</p>
        <p>Fat: {{.Nutrition.Fat}}</p>
    </div>

    <h3>Ingredients</h3>
    <ul>
        {{range .Ingredients}}<li>{{.Name}} - {{.Weight}}</li>{{end}}
    </ul>

    <h3>Ingredients to purchase</h3>
    <ul>
        {{range .Missing}}<li>{{capitalize .Name}} - {{.Cost}} Buy here: (<a href='{{.NTUC}}'>NTUC</a>) (<a href='{{.ShengSiong}}'>Sheng Siong</a>) (<a href='{{.ColdStorage}}'>Cold Storage</a>)</li>{{end}}
    </ul>
    <h3>Steps</h3>
    <ul>
        {{range .Steps}}<li>{{.}}</li>{{end}}
    </ul>
</div>{{end}}

{{define "document"}}<html>
<head><meta charset="utf-8"><style>
body { font-family: 'Source Sans Pro', sans-serif; }
h2 { color: #333; margin: 20px 0; }
.recipe { margin-bottom: 20px; padding: 10px; border-radius: 10px; }
ul, ol { margin-left: 20px; }
li { line-height: 1.8; margin: 10px 0; }
p { line-height: 1.6; margin: 10px 0; }
a { color: #333; }
img {
    max-width: 50%;
    border-radius: 10px;
    margin: 20px auto;
    display: block;
}
</style></head>
<body>
{{template "fragment" .}}
</body></html>{{end}}
`

var templates = template.Must(template.New("recipe").Funcs(template.FuncMap{
	"capitalize": common.Capitalize,
}).Parse(documentTemplates))

// view 模板資料
type view struct {
	Title       string
	Emoji       string
	ImageSrc    template.URL
	Nutrition   common.Nutrition
	Ingredients []common.Ingredient
	Missing     []common.MissingIngredient
	Steps       []string
}

// Renderer 食譜文件渲染
type Renderer struct {
	pdf PDFRenderer
}

// NewRenderer pdf 為 nil 時停用 PDF 輸出
func NewRenderer(pdf PDFRenderer) *Renderer {
	return &Renderer{pdf: pdf}
}

// PDFFileName 第 index 道食譜的 PDF 檔名
func PDFFileName(index int) string {
	return fmt.Sprintf("recipe_%d.pdf", index)
}

func newView(r common.Recipe, forPDF bool, imageSrc string) view {
	v := view{
		Title:       r.Title,
		ImageSrc:    template.URL(imageSrc),
		Ingredients: r.Ingredients,
		Missing:     r.MissingIngredients,
		Steps:       r.Steps,
	}
	if !forPDF {
		v.Emoji = FoodEmoji(r.Title)
	}
	if r.Nutrition != nil {
		v.Nutrition = *r.Nutrition
	}
	return v
}

func execute(name string, v view) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDocumentRender, err)
	}
	return buf.String(), nil
}

// Fragment 產生食譜的 HTML 片段，forPDF 時省略 emoji
func (rd *Renderer) Fragment(r common.Recipe, forPDF bool) (string, error) {
	src := r.ImageURL
	if src == "" {
		src = r.ImagePath
	}
	return execute("fragment", newView(r, forPDF, src))
}

// Document 產生可獨立轉檔的完整 HTML，圖片存在時改用 file:// 絕對路徑
func (rd *Renderer) Document(r common.Recipe) (string, error) {
	return execute("document", newView(r, true, documentImageSrc(r)))
}

func documentImageSrc(r common.Recipe) string {
	if r.ImagePath != "" {
		if abs, err := filepath.Abs(r.ImagePath); err == nil {
			if _, err := os.Stat(abs); err == nil {
				return "file://" + abs
			}
		}
	}
	if r.ImageURL != "" {
		return r.ImageURL
	}
	return r.ImagePath
}

// WritePDF 將食譜輸出成 PDF，回傳檔案路徑
func (rd *Renderer) WritePDF(ctx context.Context, r common.Recipe, outputPath string) (string, error) {
	if rd.pdf == nil {
		return "", fmt.Errorf("%w: pdf output disabled", common.ErrDocumentRender)
	}

	html, err := rd.Document(r)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDocumentRender, err)
	}
	if err := rd.pdf.Render(ctx, html, outputPath); err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrDocumentRender, err)
	}
	return outputPath, nil
}
