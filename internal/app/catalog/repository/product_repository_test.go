package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"velora/internal/app/catalog/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProductRepositoryTestSuite тестовый suite для PostgreSQL repository
type ProductRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	mock  sqlmock.Sqlmock
	repo  ProductRepository
	sqlDB *sql.DB
}

func TestProductRepositorySuite(t *testing.T) {
	suite.Run(t, new(ProductRepositoryTestSuite))
}

func (s *ProductRepositoryTestSuite) SetupTest() {
	var err error
	s.sqlDB, s.mock, err = sqlmock.New()
	require.NoError(s.T(), err)

	dialector := postgres.New(postgres.Config{
		Conn:       s.sqlDB,
		DriverName: "postgres",
	})

	s.db, err = gorm.Open(dialector, &gorm.Config{})
	require.NoError(s.T(), err)

	s.repo = NewProductRepository(s.db)
}

func (s *ProductRepositoryTestSuite) TearDownTest() {
	s.sqlDB.Close()
}

func productRows(ids ...uuid.UUID) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "slug", "name", "price", "material", "available_quantity", "is_active", "created_at"})
	for i, id := range ids {
		rows.AddRow(id, "product-"+id.String()[:8], "Product", 100.0+float64(i), "linen", 5, true, time.Now())
	}
	return rows
}

func emptyCategoryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"product_id", "category"})
}

// ===================== List Tests =====================

func (s *ProductRepositoryTestSuite) TestList_Success() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(`SELECT \* FROM "products" WHERE products\.is_active = \$1`).
		WillReturnRows(productRows(productID))
	s.mock.ExpectQuery(`SELECT \* FROM "product_categories" WHERE`).
		WillReturnRows(emptyCategoryRows())

	// Act
	products, err := s.repo.List(ctx, entity.CatalogFilter{})

	// Assert
	s.NoError(err)
	s.Len(products, 1)
	s.Equal(productID, products[0].ID)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestList_SearchUsesILIKE() {
	ctx := context.Background()

	s.mock.ExpectQuery(`products\.name ILIKE \$2`).
		WithArgs(true, "%linen%", entity.DefaultLimit).
		WillReturnRows(productRows())

	// Act
	products, err := s.repo.List(ctx, entity.CatalogFilter{Search: "linen"})

	// Assert
	s.NoError(err)
	s.Empty(products)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestList_CategoryFilterIsCaseInsensitive() {
	ctx := context.Background()

	s.mock.ExpectQuery(`LOWER\(pc\.category\) = LOWER\(\$2\)`).
		WithArgs(true, "Tablecloths", entity.DefaultLimit).
		WillReturnRows(productRows())

	// Act
	products, err := s.repo.List(ctx, entity.CatalogFilter{Category: "Tablecloths"})

	// Assert
	s.NoError(err)
	s.Empty(products)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestList_CategoryAllMeansNoFilter() {
	ctx := context.Background()

	// Сентинель "all" не добавляет условия по категории
	s.mock.ExpectQuery(`SELECT \* FROM "products" WHERE products\.is_active = \$1 ORDER BY`).
		WithArgs(true, entity.DefaultLimit).
		WillReturnRows(productRows())

	// Act
	products, err := s.repo.List(ctx, entity.CatalogFilter{Category: entity.CategoryAll})

	// Assert
	s.NoError(err)
	s.Empty(products)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestList_InStockFirstOrdering() {
	ctx := context.Background()

	s.mock.ExpectQuery(`ORDER BY available_quantity DESC, price ASC`).
		WillReturnRows(productRows())

	// Act
	products, err := s.repo.List(ctx, entity.CatalogFilter{Sort: entity.SortPriceLowToHigh})

	// Assert
	s.NoError(err)
	s.Empty(products)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Count / ListPrices Tests =====================

func (s *ProductRepositoryTestSuite) TestCount_AppliesPriceBounds() {
	ctx := context.Background()
	minPrice, maxPrice := 50.0, 200.0

	s.mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
		WithArgs(true, minPrice, maxPrice).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	// Act
	total, err := s.repo.Count(ctx, entity.CatalogFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})

	// Assert
	s.NoError(err)
	s.Equal(int64(7), total)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestListPrices_IgnoresPriceBounds() {
	ctx := context.Background()
	minPrice := 50.0

	// Популяция для гистограммы строится без ценовых границ: единственный аргумент is_active
	s.mock.ExpectQuery(`SELECT "products"\."price" FROM "products"`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(10.0).AddRow(250.0))

	// Act
	prices, err := s.repo.ListPrices(ctx, entity.CatalogFilter{MinPrice: &minPrice})

	// Assert
	s.NoError(err)
	s.Equal([]float64{10, 250}, prices)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== Distinct Listings Tests =====================

func (s *ProductRepositoryTestSuite) TestDistinctCategories_Success() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT DISTINCT "product_categories"\."category" FROM "product_categories" JOIN products`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"category"}).AddRow("napkins").AddRow("tablecloths"))

	// Act
	categories, err := s.repo.DistinctCategories(ctx)

	// Assert
	s.NoError(err)
	s.Equal([]string{"napkins", "tablecloths"}, categories)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestDistinctMaterials_Success() {
	ctx := context.Background()

	s.mock.ExpectQuery(`SELECT DISTINCT "material" FROM "products"`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"material"}).AddRow("cotton").AddRow("linen"))

	// Act
	materials, err := s.repo.DistinctMaterials(ctx)

	// Assert
	s.NoError(err)
	s.Equal([]string{"cotton", "linen"}, materials)

	s.NoError(s.mock.ExpectationsWereMet())
}

// ===================== GetBySlug / GetByID Tests =====================

func (s *ProductRepositoryTestSuite) TestGetBySlug_Success() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE slug = $1`)).
		WithArgs("linen-tablecloth", 1).
		WillReturnRows(productRows(productID))
	s.mock.ExpectQuery(`SELECT \* FROM "product_categories" WHERE`).
		WillReturnRows(emptyCategoryRows())

	// Act
	product, err := s.repo.GetBySlug(ctx, "linen-tablecloth")

	// Assert
	s.NoError(err)
	s.NotNil(product)
	s.Equal(productID, product.ID)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestGetBySlug_NotFound() {
	ctx := context.Background()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE slug = $1`)).
		WithArgs("missing", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	product, err := s.repo.GetBySlug(ctx, "missing")

	// Assert
	s.Nil(product)
	s.ErrorIs(err, ErrProductNotFound)
}

func (s *ProductRepositoryTestSuite) TestGetByID_NotFound() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products" WHERE id = $1`)).
		WithArgs(productID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	product, err := s.repo.GetByID(ctx, productID)

	// Assert
	s.Nil(product)
	s.ErrorIs(err, ErrProductNotFound)
}

// ===================== Recommendation Queries Tests =====================

func (s *ProductRepositoryTestSuite) TestListFeatured_RequiresStock() {
	ctx := context.Background()
	productID := uuid.New()

	s.mock.ExpectQuery(`is_active = \$1 AND available_quantity > 0 ORDER BY created_at DESC`).
		WithArgs(true, 8).
		WillReturnRows(productRows(productID))
	s.mock.ExpectQuery(`SELECT \* FROM "product_categories" WHERE`).
		WillReturnRows(emptyCategoryRows())

	// Act
	products, err := s.repo.ListFeatured(ctx, 8)

	// Assert
	s.NoError(err)
	s.Len(products, 1)

	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestListEligibleByIDs_EmptyInput() {
	ctx := context.Background()

	// Act - пустой список ID не должен ходить в БД
	products, err := s.repo.ListEligibleByIDs(ctx, nil)

	// Assert
	s.NoError(err)
	s.Nil(products)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestListByAffinity_EmptyCategories() {
	ctx := context.Background()

	// Act
	products, err := s.repo.ListByAffinity(ctx, nil, nil, 8)

	// Assert
	s.NoError(err)
	s.Nil(products)
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *ProductRepositoryTestSuite) TestListRelated_ExcludesProductItself() {
	ctx := context.Background()
	excludeID := uuid.New()
	relatedID := uuid.New()

	s.mock.ExpectQuery(`is_active = \$1 AND id <> \$2`).
		WithArgs(true, excludeID, "tablecloths", 4).
		WillReturnRows(productRows(relatedID))
	s.mock.ExpectQuery(`SELECT \* FROM "product_categories" WHERE`).
		WillReturnRows(emptyCategoryRows())

	// Act
	products, err := s.repo.ListRelated(ctx, "tablecloths", excludeID, 4)

	// Assert
	s.NoError(err)
	s.Len(products, 1)
	s.Equal(relatedID, products[0].ID)

	s.NoError(s.mock.ExpectationsWereMet())
}
