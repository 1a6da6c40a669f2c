package labels

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"go_productlabel/internal/cache"
	"go_productlabel/internal/httpx"
	"go_productlabel/internal/image"
	"go_productlabel/internal/label"
	"go_productlabel/internal/model"
	"go_productlabel/internal/service"
	"go_productlabel/internal/store"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products map[int]model.Product
	values   map[int]map[int]string
	rules    []label.Rule
	err      error
}

func (f *fakeCatalog) FindByID(ctx context.Context, id int) (*model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	return &p, nil
}

func (f *fakeCatalog) FindByIDs(ctx context.Context, ids []int) ([]model.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []model.Product{}
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeCatalog) ActiveRules(ctx context.Context) ([]label.Rule, error) {
	return f.rules, nil
}

func (f *fakeCatalog) ResolveAttributes(ctx context.Context, productID int, attributeIDs []int) (map[int]label.ResolvedAttribute, error) {
	out := map[int]label.ResolvedAttribute{}
	for _, id := range attributeIDs {
		if v, ok := f.values[productID][id]; ok {
			out[id] = label.ResolvedAttribute{AttributeID: id, Options: label.ParseOptions(v)}
		}
	}
	return out, nil
}

func newProduct(id int) model.Product {
	p := model.Product{SKU: "SKU"}
	p.ID = id
	return p
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T, catalog *fakeCatalog) (*gin.Engine, *miniredis.Miniredis) {
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger, _ := test.NewNullLogger()
	entry := logrus.NewEntry(logger)

	svc := service.NewProductLabelService(&service.ProductLabelConfig{
		Rules:    catalog,
		Products: catalog,
		Loader:   cache.NewLoader(cache.NewRedisKVStore(client), entry, nil),
		Images:   image.NewLocator("/media/labels"),
		Logger:   entry,
	})

	h := NewHandler(catalog, svc)
	r := gin.New()
	r.GET("/labels/product/:id", h.Product)
	r.GET("/labels/category", h.Category)
	r.POST("/labels/cache/flush", h.Flush)
	return r, mr
}

func defaultCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[int]model.Product{1: newProduct(1), 2: newProduct(2)},
		values: map[int]map[int]string{
			1: {5: "10"},
			2: {5: "3,10", 6: "20"},
		},
		rules: []label.Rule{
			{
				ID: 1, AttributeID: 5, OptionID: "10", ImageName: "new.png",
				DisplayOn:            []label.View{label.ViewListing, label.ViewProduct},
				PositionCategoryList: "top-left", PositionProductView: "top-right",
			},
			{
				ID: 2, AttributeID: 6, OptionID: "20", ImageName: "sale.png",
				DisplayOn:            []label.View{label.ViewListing},
				PositionCategoryList: "bottom-left", PositionProductView: "bottom-right",
			},
		},
	}
}

func do(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestProduct(t *testing.T) {
	r, _ := setupRouter(t, defaultCatalog())

	w, env := do(r, "GET", "/labels/product/2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, httpx.CodeSuccess, env.Code)
	assert.Equal(t, "cat_p_2,"+cache.LabelCacheTag, w.Header().Get(CacheTagsHeader))

	var resp ProductResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, 2, resp.ProductID)
	assert.Equal(t, label.ViewProduct, resp.View)
	assert.Equal(t, "product", resp.WrapperClass)
	require.Len(t, resp.Labels, 1)
	assert.Equal(t, 1, resp.Labels[0].ID)
	assert.Equal(t, "top-right product", resp.Labels[0].Class)
	assert.Equal(t, "/media/labels/new.png", resp.Labels[0].ImageURL)
}

func TestProduct_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"invalid id", "/labels/product/abc", nil, http.StatusBadRequest, httpx.CodeParamInvalid},
		{"zero id", "/labels/product/0", nil, http.StatusBadRequest, httpx.CodeParamInvalid},
		{"unknown product", "/labels/product/99", nil, http.StatusNotFound, httpx.CodeNotFound},
		{"database failure", "/labels/product/1", errors.New("db down"), http.StatusInternalServerError, httpx.CodeDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := defaultCatalog()
			catalog.err = tt.err
			r, _ := setupRouter(t, catalog)

			w, env := do(r, "GET", tt.path)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestCategory(t *testing.T) {
	r, _ := setupRouter(t, defaultCatalog())

	w, env := do(r, "GET", "/labels/category?ids=2,99,1,2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cat_p_2,"+cache.LabelCacheTag+",cat_p_1", w.Header().Get(CacheTagsHeader))

	var resp ListingResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	assert.Equal(t, label.ViewListing, resp.View)
	assert.Equal(t, "listing", resp.WrapperClass)
	require.Len(t, resp.Items, 2)

	assert.Equal(t, 2, resp.Items[0].ProductID)
	require.Len(t, resp.Items[0].Labels, 2)
	assert.Equal(t, "top-left category", resp.Items[0].Labels[0].Class)
	assert.Equal(t, "bottom-left category", resp.Items[0].Labels[1].Class)

	assert.Equal(t, 1, resp.Items[1].ProductID)
	require.Len(t, resp.Items[1].Labels, 1)
}

func TestCategory_InvalidIDs(t *testing.T) {
	r, _ := setupRouter(t, defaultCatalog())

	w, env := do(r, "GET", "/labels/category")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, httpx.CodeParamMissing, env.Code)

	w, env = do(r, "GET", "/labels/category?ids=1,x")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, httpx.CodeParamInvalid, env.Code)
	assert.JSONEq(t, `{"invalid":["x"]}`, string(env.Data))
}

func TestFlush(t *testing.T) {
	r, mr := setupRouter(t, defaultCatalog())

	w, _ := do(r, "GET", "/labels/product/1")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, mr.Exists(cache.LabelListKey))

	w, env := do(r, "POST", "/labels/cache/flush")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "label cache flushed", env.Message)
	assert.False(t, mr.Exists(cache.LabelListKey))
}

func TestParseIDs_TooMany(t *testing.T) {
	raw := "1"
	for i := 2; i <= maxListingProducts+1; i++ {
		raw += "," + strconv.Itoa(i)
	}
	_, err := parseIDs(raw)
	require.NotNil(t, err)
	assert.Equal(t, httpx.CodeParamInvalid, err.Code)
}
