package supabase

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nao1215/storefront/internal/backend"
	"github.com/nao1215/storefront/pkg/httpclient"
)

// restPath はテーブルのPostgRESTエンドポイント。
func restPath(table string) string {
	return "/rest/v1/" + url.PathEscape(table)
}

// filterQuery はFilterをPostgRESTの "列=eq.値" 形式に変換する。
func filterQuery(columns string, f backend.Filter) url.Values {
	q := url.Values{}
	if columns != "" {
		q.Set("select", columns)
	}
	for _, cond := range f {
		q.Add(cond.Column, "eq."+backend.FormatValue(cond.Value))
	}
	return q
}

// Select はfilterに一致する行を返す。一致する行が無い場合は空のスライスを返す。
func (c *Client) Select(ctx context.Context, table, columns string, filter backend.Filter) ([]backend.Row, error) {
	if columns == "" {
		columns = "*"
	}
	var rows []backend.Row
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   restPath(table),
		Query:  filterQuery(columns, filter),
		Header: c.authHeader(backend.AccessToken(ctx)),
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("%sの取得に失敗: %w", table, translateError(err))
	}
	if rows == nil {
		rows = []backend.Row{}
	}
	return rows, nil
}

// Insert は1行を挿入し、バックエンドが返した挿入後の行を返す。
func (c *Client) Insert(ctx context.Context, table string, row backend.Row) ([]backend.Row, error) {
	header := c.authHeader(backend.AccessToken(ctx))
	header.Set("Prefer", "return=representation")

	var rows []backend.Row
	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   restPath(table),
		Query:  url.Values{"select": []string{"*"}},
		Header: header,
		Body:   []backend.Row{row},
	}, &rows)
	if err != nil {
		return nil, fmt.Errorf("%sへの挿入に失敗: %w", table, translateError(err))
	}
	if rows == nil {
		rows = []backend.Row{}
	}
	return rows, nil
}

// Update はfilterに一致する行をrowの内容で更新する。
func (c *Client) Update(ctx context.Context, table string, row backend.Row, filter backend.Filter) error {
	header := c.authHeader(backend.AccessToken(ctx))
	header.Set("Prefer", "return=minimal")

	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPatch,
		Path:   restPath(table),
		Query:  filterQuery("", filter),
		Header: header,
		Body:   row,
	}, nil)
	if err != nil {
		return fmt.Errorf("%sの更新に失敗: %w", table, translateError(err))
	}
	return nil
}

// Delete はfilterに一致する行を削除する。
func (c *Client) Delete(ctx context.Context, table string, filter backend.Filter) error {
	header := c.authHeader(backend.AccessToken(ctx))
	header.Set("Prefer", "return=minimal")

	err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodDelete,
		Path:   restPath(table),
		Query:  filterQuery("", filter),
		Header: header,
	}, nil)
	if err != nil {
		return fmt.Errorf("%sの削除に失敗: %w", table, translateError(err))
	}
	return nil
}
