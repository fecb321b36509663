package controllers

import (
	"catalogapi/middlewares"
	"catalogapi/models"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize/v2"
	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/lib/pq"
)

type sortOrder struct {
	column    string
	direction string
}

// Only values from this table ever reach the ORDER BY clause.
var sortOrders = map[string]sortOrder{
	"":          {"p.title", "ASC"},
	"Title a_z": {"p.title", "ASC"},
	"Title z_a": {"p.title", "DESC"},
	"Price a_z": {"p.price", "ASC"},
	"Price z_a": {"p.price", "DESC"},
	"Newest":    {"p.created_at", "DESC"},
	"Oldest":    {"p.created_at", "ASC"},
}

func resolveSort(sortBy string) (sortOrder, error) {
	order, ok := sortOrders[sortBy]
	if !ok {
		return sortOrder{}, errors.New("invalid-sort-by")
	}
	return order, nil
}

// buildProductFilter collects the optional listing predicates into a WHERE
// clause with positional binds. Absent inputs contribute nothing.
func buildProductFilter(categories []string, name string, minPrice, maxPrice *int, condition string) (filterQ string, stms []interface{}, err error) {
	var conds []string

	if len(categories) > 0 {
		for _, id := range categories {
			if _, err := uuid.FromString(id); err != nil {
				return "", nil, errors.New("invalid-category")
			}
		}
		conds = append(conds, fmt.Sprintf("p.category_id = ANY($%d)", len(stms)+1))
		stms = append(stms, pq.Array(categories))
	}

	if name != "" {
		conds = append(conds, fmt.Sprintf("p.title LIKE $%d", len(stms)+1))
		stms = append(stms, "%"+name+"%")
	}

	if minPrice != nil {
		conds = append(conds, fmt.Sprintf("p.price >= $%d", len(stms)+1))
		stms = append(stms, *minPrice)
	}

	if maxPrice != nil {
		conds = append(conds, fmt.Sprintf("p.price <= $%d", len(stms)+1))
		stms = append(stms, *maxPrice)
	}

	if condition != "" {
		conds = append(conds, fmt.Sprintf("p.condition = $%d", len(stms)+1))
		stms = append(stms, condition)
	}

	if len(conds) == 0 {
		return "", stms, nil
	}

	return " WHERE " + strings.Join(conds, " AND "), stms, nil
}

func optionalInt(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return nil, errors.New("invalid-price")
	}

	return &val, nil
}

func (api *API) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	pageSize, _ := strconv.Atoi(c.Query("page_size"))

	asExcel, _ := strconv.ParseBool(c.Query("export_as_excel"))

	if page < 1 {
		page = 1
	}

	if pageSize < 1 {
		pageSize = 20
	}

	order, err := resolveSort(c.Query("sort_by"))
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	condition := c.Query("condition")
	if condition != "" && !models.ValidCondition(condition) {
		sendError(c, http.StatusBadRequest, "invalid-condition")
		return
	}

	minPrice, err := optionalInt(c.Query("min_price"))
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	maxPrice, err := optionalInt(c.Query("max_price"))
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	filterQ, stms, err := buildProductFilter(c.QueryArray("category"), c.Query("product_name"), minPrice, maxPrice, condition)
	if err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	// COUNT(*) OVER() runs after grouping and before LIMIT, so every row
	// carries the total matching products and no second query is needed.
	selectQ := `SELECT
			p.id, p.title, p.brand, p.product_detail,
			p.price, p.condition, p.category_id, p.created_at,
			array_agg(i.image_url) FILTER (WHERE i.image_url IS NOT NULL) AS images,
			COUNT(*) OVER() AS total_item
		FROM products p
		LEFT JOIN product_images pi ON p.id = pi.product_id
		LEFT JOIN images i ON pi.image_id = i.id` + filterQ + `
		GROUP BY p.id`

	offset := (page - 1) * pageSize
	orderVal := fmt.Sprintf(" ORDER BY %s %s, p.id", order.column, order.direction)
	pagination := fmt.Sprintf(" LIMIT %d OFFSET %d", pageSize, offset)

	log.Println(selectQ + orderVal + pagination)

	products, total, err := api.queryProducts(selectQ+orderVal+pagination, stms)
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if asExcel {
		// the listing is public, so the payload header is client-supplied
		// here; the export role must come from a validated session
		token, _ := c.Cookie("token")
		sessPayload, err := middlewares.ValidateToken(token, api.Redis)
		if err != nil {
			log.Println(err)
			sendError(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		var session models.RedisPayload
		if err := json.Unmarshal([]byte(sessPayload), &session); err != nil || session.Role != string(models.Admin) {
			sendError(c, http.StatusForbidden, "forbidden")
			return
		}

		handleExcelProducts(c, products)
		return
	}

	totalPage := 1
	if total > 0 {
		totalPage = (int(total) + pageSize - 1) / pageSize
	}

	c.JSON(http.StatusOK, models.ProductList{
		Data:      products,
		TotalRows: len(products),
		Pagination: models.Pagination{
			Page:      page,
			PageSize:  pageSize,
			TotalItem: total,
			TotalPage: totalPage,
		},
	})
}

func (api *API) queryProducts(q string, stms []interface{}) (products []models.Product, total int32, err error) {
	products = []models.Product{}

	rows, err := api.Db.Query(q, stms...)
	if err != nil {
		log.Println(err)
		return
	}

	defer rows.Close()

	base := storageBaseURL()

	for rows.Next() {
		var product models.Product
		var brand, detail, condition, categoryId sql.NullString
		var images pq.StringArray
		err = rows.Scan(&product.Id, &product.Title, &brand, &detail,
			&product.Price, &condition, &categoryId, &product.CreatedAt, &images, &total)
		if err != nil {
			log.Println(err)
			return
		}

		product.Brand = brand.String
		product.ProductDetail = detail.String
		product.Condition = condition.String
		product.CategoryId = categoryId.String
		product.Images = prefixImages(base, images)

		products = append(products, product)
	}

	return
}

// prefixImages turns stored relative fragments into absolute object-store URLs.
func prefixImages(base string, fragments []string) []string {
	urls := make([]string, 0, len(fragments))
	for _, fragment := range fragments {
		urls = append(urls, base+"/"+fragment)
	}
	return urls
}

func (api *API) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.FromString(id); err != nil {
		sendError(c, http.StatusBadRequest, "invalid-id")
		return
	}

	// Images, sizes and stock are aggregated independently with DISTINCT so
	// the join fan-out (N images x M sizes rows) collapses back to N and M.
	q := `SELECT
			p.id, p.title, p.brand, p.product_detail,
			p.price, p.condition, p.category_id, p.created_at, c.title AS category_name,
			array_agg(DISTINCT i.image_url) FILTER (WHERE i.image_url IS NOT NULL) AS images,
			array_agg(DISTINCT s.size) FILTER (WHERE s.size IS NOT NULL) AS size,
			COALESCE(jsonb_agg(DISTINCT jsonb_build_object('size', s.size, 'quantity', psq.quantity)) FILTER (WHERE s.size IS NOT NULL), '[]') AS stock
		FROM products p
		JOIN categories c ON p.category_id = c.id
		LEFT JOIN product_images pi ON p.id = pi.product_id
		LEFT JOIN images i ON pi.image_id = i.id
		LEFT JOIN product_size_quantities psq ON p.id = psq.product_id
		LEFT JOIN sizes s ON psq.size_id = s.id
		WHERE p.id = $1
		GROUP BY p.id, c.title`

	var detail models.ProductDetail
	var brand, productDetail, condition sql.NullString
	var images, sizes pq.StringArray
	var stock []byte

	err := api.Db.QueryRow(q, id).Scan(&detail.Id, &detail.Title, &brand, &productDetail,
		&detail.Price, &condition, &detail.CategoryId, &detail.CreatedAt, &detail.CategoryName,
		&images, &sizes, &stock)
	if err != nil {
		if err == sql.ErrNoRows {
			sendError(c, http.StatusNotFound, "product-not-found")
			return
		}

		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	detail.Brand = brand.String
	detail.ProductDetail = productDetail.String
	detail.Condition = condition.String
	detail.Images = prefixImages(storageBaseURL(), images)
	detail.Sizes = sizes
	detail.Stock = []models.Stock{}

	if err := json.Unmarshal(stock, &detail.Stock); err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (api *API) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validateProduct(req.Title, req.Condition, req.CategoryId, req.Price); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := api.Db.Begin()
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer tx.Rollback()

	productId := uuid.Must(uuid.NewV4()).String()

	if _, err := tx.Exec(`
		INSERT INTO products
		(id, title, brand, product_detail, price, condition, category_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, productId, req.Title, req.Brand, req.ProductDetail, req.Price, req.Condition, req.CategoryId); err != nil {
		log.Println(err)
		sendError(c, storageErrorCode(err), err.Error())
		return
	}

	for _, image := range req.Images {
		imageId := uuid.Must(uuid.NewV4()).String()

		if _, err := tx.Exec(`INSERT INTO images (id, name, image_url) VALUES ($1, $2, $3)`,
			imageId, image.Name, image.ImageUrl); err != nil {
			log.Println(err)
			sendError(c, storageErrorCode(err), err.Error())
			return
		}

		if _, err := tx.Exec(`INSERT INTO product_images (product_id, image_id) VALUES ($1, $2)`,
			productId, imageId); err != nil {
			log.Println(err)
			sendError(c, storageErrorCode(err), err.Error())
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product added", "id": productId})
}

func (api *API) UpdateProduct(c *gin.Context) {
	var req models.UpdateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		log.Println(err)
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := uuid.FromString(req.Id); err != nil {
		sendError(c, http.StatusBadRequest, "invalid-id")
		return
	}

	if err := validateProduct(req.Title, req.Condition, req.CategoryId, req.Price); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	for _, image := range req.Images {
		if _, err := uuid.FromString(image.Id); err != nil {
			sendError(c, http.StatusBadRequest, "invalid-image-id")
			return
		}
	}

	for _, stock := range req.Stock {
		if stock.Quantity < 0 {
			sendError(c, http.StatusBadRequest, "invalid-quantity")
			return
		}
	}

	tx, err := api.Db.Begin()
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer tx.Rollback()

	tag, err := tx.Exec(`
		UPDATE products SET title = $1, brand = $2, product_detail = $3,
		price = $4, condition = $5, category_id = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $7
	`, req.Title, req.Brand, req.ProductDetail, req.Price, req.Condition, req.CategoryId, req.Id)
	if err != nil {
		log.Println(err)
		sendError(c, storageErrorCode(err), err.Error())
		return
	}

	if affected, _ := tag.RowsAffected(); affected == 0 {
		sendError(c, http.StatusNotFound, "product-not-found")
		return
	}

	// Supplied images mutate existing rows in place by id; associations are
	// not reconciled here.
	for _, image := range req.Images {
		if _, err := tx.Exec(`UPDATE images SET name = $1, image_url = $2 WHERE id = $3`,
			image.Name, image.ImageUrl, image.Id); err != nil {
			log.Println(err)
			sendError(c, storageErrorCode(err), err.Error())
			return
		}
	}

	for _, stock := range req.Stock {
		tag, err := tx.Exec(`
			INSERT INTO product_size_quantities (product_id, size_id, quantity)
			SELECT $1, id, $3 FROM sizes WHERE size = $2
			ON CONFLICT (product_id, size_id) DO UPDATE SET quantity = EXCLUDED.quantity
		`, req.Id, stock.Size, stock.Quantity)
		if err != nil {
			log.Println(err)
			sendError(c, storageErrorCode(err), err.Error())
			return
		}

		// zero rows means the SELECT found no such size label
		if affected, _ := tag.RowsAffected(); affected == 0 {
			sendError(c, http.StatusBadRequest, "invalid-size")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

func (api *API) DeleteProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.FromString(id); err != nil {
		sendError(c, http.StatusBadRequest, "invalid-id")
		return
	}

	tx, err := api.Db.Begin()
	if err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	defer tx.Rollback()

	cleanups := []string{
		`DELETE FROM product_size_quantities WHERE product_id = $1`,
		`DELETE FROM images WHERE id IN (SELECT image_id FROM product_images WHERE product_id = $1)`,
		`DELETE FROM product_images WHERE product_id = $1`,
	}

	for _, q := range cleanups {
		if _, err := tx.Exec(q, id); err != nil {
			log.Println(err)
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	tag, err := tx.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		log.Println(err)
		sendError(c, storageErrorCode(err), err.Error())
		return
	}

	if affected, _ := tag.RowsAffected(); affected == 0 {
		sendError(c, http.StatusNotFound, "product-not-found")
		return
	}

	if err := tx.Commit(); err != nil {
		log.Println(err)
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func validateProduct(title, condition, categoryId string, price int) error {

	if title == "" {
		return errors.New("missing-title")
	}

	if price < 0 {
		return errors.New("invalid-price")
	}

	if !models.ValidCondition(condition) {
		return errors.New("invalid-condition")
	}

	if _, err := uuid.FromString(categoryId); err != nil {
		return errors.New("invalid-category-id")
	}

	return nil
}

func handleExcelProducts(c *gin.Context, products []models.Product) {
	if len(products) == 0 {
		sendError(c, http.StatusNotFound, "products-not-found")
		return
	}

	f := excelize.NewFile()

	sheet := "List Products"
	f.NewSheet(sheet)
	// delete default sheet
	f.DeleteSheet("Sheet1")

	err := f.SetColWidth(sheet, "A", "E", 50)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	headerStyle, err := f.NewStyle(s1)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	dataStyle, err := f.NewStyle(s2)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	streamWriter, err := f.NewStreamWriter(sheet)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	if err = streamWriter.SetRow("A1", []interface{}{
		excelize.Cell{StyleID: headerStyle, Value: "Title"},
		excelize.Cell{StyleID: headerStyle, Value: "Brand"},
		excelize.Cell{StyleID: headerStyle, Value: "Price"},
		excelize.Cell{StyleID: headerStyle, Value: "Condition"},
		excelize.Cell{StyleID: headerStyle, Value: "Created At"}}); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	for n, product := range products {
		row := make([]interface{}, 5)
		row[0] = excelize.Cell{StyleID: dataStyle, Value: product.Title}
		row[1] = excelize.Cell{StyleID: dataStyle, Value: product.Brand}
		row[2] = excelize.Cell{StyleID: dataStyle, Value: humanize.Comma(int64(product.Price))}
		row[3] = excelize.Cell{StyleID: dataStyle, Value: product.Condition}
		row[4] = excelize.Cell{StyleID: dataStyle, Value: product.CreatedAt.Format("2006-01-02 15:04:05")}

		cell, _ := excelize.CoordinatesToCellName(1, n+2)
		if err = streamWriter.SetRow(cell, row); err != nil {
			sendError(c, http.StatusInternalServerError, err.Error())
			return
		}
	}

	if err := streamWriter.Flush(); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

	fileName := fmt.Sprintf("catalog_products_%s.xlsx", time.Now().Format("20060102_150405"))

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment;filename=\""+fileName+"\"")

	if _, err := f.WriteTo(c.Writer); err != nil {
		sendError(c, http.StatusInternalServerError, err.Error())
		return
	}

}
