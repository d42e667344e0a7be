package export

import (
	"io"
	"strconv"

	"ecshop/internal/domain/model"

	"github.com/tealeg/xlsx"
)

const (
	ProductsFileName  = "products.xlsx"
	XLSXContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	productsSheetName = "Products"
	exportTimeLayout  = "2006-01-02 15:04:05"
)

var productHeaders = []string{
	"ID", "Name", "SKU", "Price", "Stock", "CategoryID", "Active", "ImageURL", "CreatedAt", "UpdatedAt",
}

// 商品一覧をxlsxで書き出す
func WriteProductsXLSX(w io.Writer, products []model.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(productsSheetName)
	if err != nil {
		return err
	}

	headerRow := sheet.AddRow()
	for _, h := range productHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()

		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		sku := ""
		if p.SKU != nil {
			sku = *p.SKU
		}
		row.AddCell().SetValue(sku)
		// 金額は丸め誤差を避けて文字列のまま
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Stock)
		cat := ""
		if p.CategoryID != nil {
			cat = strconv.FormatInt(*p.CategoryID, 10)
		}
		row.AddCell().SetValue(cat)
		row.AddCell().SetValue(p.IsActive)
		row.AddCell().SetValue(p.ImageURL)
		row.AddCell().SetValue(p.CreatedAt.Format(exportTimeLayout))
		row.AddCell().SetValue(p.UpdatedAt.Format(exportTimeLayout))
	}

	return file.Write(w)
}
