package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/config"

	"github.com/go-playground/validator/v10"
)

type Role string

const (
	// RoleService uses the elevated key and may write.
	RoleService Role = "service"
	// RoleAnon uses the restricted key; row-level security denies writes.
	RoleAnon Role = "anon"
)

type RestClient struct {
	httpClient *http.Client
	baseURL    string
	key        string
	role       Role
}

func NewRestClient(restCfg *config.Rest, role Role) *RestClient {
	key := restCfg.AnonKey
	if role == RoleService {
		key = restCfg.ServiceKey
	}

	timeout := restCfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &RestClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(restCfg.URL, "/"),
		key:     key,
		role:    role,
	}
}

func (c *RestClient) Role() Role {
	return c.role
}

type filter struct {
	column string
	op     string
	value  string
}

type orderBy struct {
	column string
	asc    bool
}

// Query is a builder for the REST endpoint's query-string operators.
type Query struct {
	sel     string
	filters []filter
	orders  []orderBy
	limit   int
	offset  int
}

func NewQuery() *Query {
	return &Query{}
}

// Select sets the column list, including embedded relations such as
// "*,store:stores(*)".
func (q *Query) Select(columns string) *Query {
	q.sel = columns
	return q
}

func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column: column, op: "eq", value: fmt.Sprint(value)})
	return q
}

func (q *Query) In(column string, values []string) *Query {
	q.filters = append(q.filters, filter{column: column, op: "in", value: "(" + strings.Join(values, ",") + ")"})
	return q
}

func (q *Query) Order(column string, asc bool) *Query {
	q.orders = append(q.orders, orderBy{column: column, asc: asc})
	return q
}

func (q *Query) Limit(limit int) *Query {
	q.limit = limit
	return q
}

func (q *Query) Offset(offset int) *Query {
	q.offset = offset
	return q
}

func (q *Query) Values() url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}

	if q.sel != "" {
		v.Set("select", q.sel)
	}
	for _, f := range q.filters {
		v.Add(f.column, f.op+"."+f.value)
	}
	if len(q.orders) > 0 {
		parts := make([]string, len(q.orders))
		for i, o := range q.orders {
			dir := "desc"
			if o.asc {
				dir = "asc"
			}
			parts[i] = o.column + "." + dir
		}
		v.Set("order", strings.Join(parts, ","))
	}
	if q.limit > 0 {
		v.Set("limit", strconv.Itoa(q.limit))
	}
	if q.offset > 0 {
		v.Set("offset", strconv.Itoa(q.offset))
	}

	return v
}

// Select fetches rows of resource into out, which must be a pointer to a slice.
func (c *RestClient) Select(ctx context.Context, resource string, q *Query, out any) error {
	resp, body, err := c.do(ctx, http.MethodGet, resource, q.Values(), nil, "")
	if err != nil {
		return err
	}

	return decode(resp, body, out)
}

// First returns the first row matching q, or apperror.ErrNotFound.
func First[T any](ctx context.Context, c *RestClient, resource string, q *Query) (*T, error) {
	if q == nil {
		q = NewQuery()
	}

	var rows []T
	if err := c.Select(ctx, resource, q.Limit(1), &rows); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: %w", resource, apperror.ErrNotFound)
	}

	return &rows[0], nil
}

// Count returns the exact number of rows matching q without transferring them.
func (c *RestClient) Count(ctx context.Context, resource string, q *Query) (int64, error) {
	resp, _, err := c.do(ctx, http.MethodHead, resource, q.Values(), nil, "count=exact")
	if err != nil {
		return 0, err
	}

	return parseContentRange(resp.Header.Get("Content-Range"))
}

func (c *RestClient) Insert(ctx context.Context, resource string, payload any, out any) error {
	if err := c.checkWritable(); err != nil {
		return err
	}

	resp, body, err := c.do(ctx, http.MethodPost, resource, nil, payload, "return=representation")
	if err != nil {
		return err
	}

	return decode(resp, body, out)
}

// Upsert inserts payload, merging into the existing row on onConflict.
func (c *RestClient) Upsert(ctx context.Context, resource, onConflict string, payload any, out any) error {
	if err := c.checkWritable(); err != nil {
		return err
	}

	params := url.Values{}
	params.Set("on_conflict", onConflict)

	resp, body, err := c.do(ctx, http.MethodPost, resource, params, payload, "resolution=merge-duplicates,return=representation")
	if err != nil {
		return err
	}

	return decode(resp, body, out)
}

// Update patches every row matching q.
func (c *RestClient) Update(ctx context.Context, resource string, q *Query, payload any, out any) error {
	if err := c.checkWritable(); err != nil {
		return err
	}

	resp, body, err := c.do(ctx, http.MethodPatch, resource, q.Values(), payload, "return=representation")
	if err != nil {
		return err
	}

	return decode(resp, body, out)
}

func (c *RestClient) checkWritable() error {
	if c.role != RoleService {
		return fmt.Errorf("%s key: %w", c.role, apperror.ErrReadOnly)
	}
	return nil
}

func (c *RestClient) do(ctx context.Context, method, resource string, params url.Values, payload any, prefer string) (*http.Response, []byte, error) {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.baseURL, resource)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal req payload: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("apikey", c.key)
	req.Header.Set("Authorization", "Bearer "+c.key)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, &apperror.NetworkError{URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, &apperror.NetworkError{URL: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &apperror.RestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return resp, body, nil
}

// rowValidator checks the keys every decoded row must carry.
var rowValidator = validator.New()

// decode converts shape mismatches into a RestError so nothing half-decoded
// leaks to callers. Unknown keys and rows missing a required key both count.
func decode(resp *http.Response, body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return shapeError(resp, err)
	}
	if err := validateRows(out); err != nil {
		return shapeError(resp, err)
	}

	return nil
}

func shapeError(resp *http.Response, err error) *apperror.RestError {
	return &apperror.RestError{
		StatusCode: http.StatusBadGateway,
		Body:       fmt.Sprintf("unexpected response shape (status %d): %v", resp.StatusCode, err),
	}
}

func validateRows(out any) error {
	v := reflect.Indirect(reflect.ValueOf(out))
	if v.Kind() != reflect.Slice {
		return validateRow(v)
	}

	for i := 0; i < v.Len(); i++ {
		if err := validateRow(v.Index(i)); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

func validateRow(v reflect.Value) error {
	v = reflect.Indirect(v)
	if v.Kind() != reflect.Struct {
		return nil
	}
	return rowValidator.Struct(v.Interface())
}

// parseContentRange reads the total from "0-24/3573" or "*/0".
func parseContentRange(header string) (int64, error) {
	i := strings.LastIndex(header, "/")
	if i < 0 || i == len(header)-1 {
		return 0, &apperror.RestError{StatusCode: http.StatusBadGateway, Body: "missing count in Content-Range: " + header}
	}

	total, err := strconv.ParseInt(header[i+1:], 10, 64)
	if err != nil {
		return 0, &apperror.RestError{StatusCode: http.StatusBadGateway, Body: "invalid Content-Range: " + header}
	}

	return total, nil
}
