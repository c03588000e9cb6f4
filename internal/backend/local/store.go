package local

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/storefront/internal/backend"
)

// tables は操作可能なテーブル。
var tables = map[string]struct{}{
	backend.TableProducts:   {},
	backend.TableCategories: {},
	backend.TableOrders:     {},
	backend.TableOrderItems: {},
}

// columnPattern は列名として許可する形式。
var columnPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// checkTable はテーブルが存在するかを確認する。
func checkTable(table string) error {
	if _, ok := tables[table]; !ok {
		return backend.Errorf("relation \"public.%s\" does not exist", table)
	}
	return nil
}

// whereClause はFilterをSQLのWHERE句に変換する。
// 値は文字列表現で比較するため、パスパラメータの "1" とJSONの数値1は一致する。
func whereClause(table string, f backend.Filter) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}
	conds := make([]string, 0, len(f))
	args := make([]any, 0, len(f)*2)
	for _, c := range f {
		if !columnPattern.MatchString(c.Column) {
			return "", nil, backend.Errorf("column %s.%s does not exist", table, c.Column)
		}
		if c.Column == "id" {
			id, err := parseID(c.Value)
			if err != nil {
				return "", nil, err
			}
			conds = append(conds, "id = ?")
			args = append(args, id)
			continue
		}
		conds = append(conds, "CAST(json_extract(doc, ?) AS TEXT) = ?")
		args = append(args, "$."+c.Column, backend.FormatValue(c.Value))
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// projection はselectに指定された列名を返す。全列の場合はnilを返す。
func projection(columns string) []string {
	columns = strings.TrimSpace(columns)
	if columns == "" || columns == "*" {
		return nil
	}
	parts := strings.Split(columns, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// decodeRow はid列とJSONドキュメントから行を組み立てる。
func decodeRow(id int64, doc string) (backend.Row, error) {
	row := backend.Row{}
	if err := json.Unmarshal([]byte(doc), &row); err != nil {
		return nil, fmt.Errorf("ドキュメントのデコードに失敗: %w", err)
	}
	row["id"] = id
	return row, nil
}

// parseID はid列の値を整数に変換する。整数でない場合はホスト型バックエンドと同じ文言のエラーを返す。
func parseID(v any) (int64, error) {
	n, err := strconv.ParseInt(backend.FormatValue(v), 10, 64)
	if err != nil {
		return 0, backend.Errorf("invalid input syntax for type bigint: %q", backend.FormatValue(v))
	}
	return n, nil
}

// splitID はrowからid列を取り除いたドキュメントと、指定されたidを返す。
func splitID(table string, row backend.Row) (map[string]any, *int64, error) {
	doc := make(map[string]any, len(row))
	var id *int64
	for k, v := range row {
		if k != "id" {
			doc[k] = v
			continue
		}
		n, err := parseID(v)
		if err != nil {
			return nil, nil, err
		}
		id = &n
	}
	for k := range doc {
		if !columnPattern.MatchString(k) {
			return nil, nil, backend.Errorf("Could not find the '%s' column of '%s' in the schema cache", k, table)
		}
	}
	return doc, id, nil
}

// Select はfilterに一致する行をid順に返す。
func (b *Backend) Select(ctx context.Context, table, columns string, filter backend.Filter) ([]backend.Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	where, args, err := whereClause(table, filter)
	if err != nil {
		return nil, err
	}

	rows, err := b.db.QueryContext(ctx, "SELECT id, doc FROM "+table+where+" ORDER BY id", args...)
	if err != nil {
		return nil, fmt.Errorf("%sの取得に失敗: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols := projection(columns)
	result := []backend.Row{}
	for rows.Next() {
		var (
			id  int64
			doc string
		)
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, fmt.Errorf("%sの読み取りに失敗: %w", table, err)
		}
		row, err := decodeRow(id, doc)
		if err != nil {
			return nil, err
		}
		if cols != nil {
			projected := make(backend.Row, len(cols))
			for _, c := range cols {
				projected[c] = row[c]
			}
			row = projected
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%sの読み取りに失敗: %w", table, err)
	}
	return result, nil
}

// Insert は1行を挿入し、採番されたidを含む行を返す。
func (b *Backend) Insert(ctx context.Context, table string, row backend.Row) ([]backend.Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	doc, id, err := splitID(table, row)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("ドキュメントのエンコードに失敗: %w", err)
	}

	var newID int64
	if id != nil {
		err = b.db.QueryRowContext(ctx, "INSERT INTO "+table+" (id, doc) VALUES (?, ?) RETURNING id", *id, string(encoded)).Scan(&newID)
	} else {
		err = b.db.QueryRowContext(ctx, "INSERT INTO "+table+" (doc) VALUES (?) RETURNING id", string(encoded)).Scan(&newID)
	}
	if err != nil {
		if id != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, backend.Errorf("duplicate key value violates unique constraint \"%s_pkey\"", table)
		}
		return nil, fmt.Errorf("%sへの挿入に失敗: %w", table, err)
	}

	inserted, err := decodeRow(newID, string(encoded))
	if err != nil {
		return nil, err
	}
	return []backend.Row{inserted}, nil
}

// Update はfilterに一致する各行のドキュメントにrowの属性を上書きする。
// id列の変更は行わない。
func (b *Backend) Update(ctx context.Context, table string, row backend.Row, filter backend.Filter) error {
	if err := checkTable(table); err != nil {
		return err
	}
	where, args, err := whereClause(table, filter)
	if err != nil {
		return err
	}
	patch, _, err := splitID(table, row)
	if err != nil {
		return err
	}

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	targets, err := selectDocs(ctx, tx, table, where, args)
	if err != nil {
		return err
	}
	for id, doc := range targets {
		for k, v := range patch {
			doc[k] = v
		}
		encoded, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("ドキュメントのエンコードに失敗: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "UPDATE "+table+" SET doc = ? WHERE id = ?", string(encoded), id); err != nil {
			return fmt.Errorf("%sの更新に失敗: %w", table, err)
		}
	}
	return tx.Commit()
}

// selectDocs はトランザクション内で対象行のドキュメントを読み込む。
func selectDocs(ctx context.Context, tx *sql.Tx, table, where string, args []any) (map[int64]map[string]any, error) {
	rows, err := tx.QueryContext(ctx, "SELECT id, doc FROM "+table+where, args...)
	if err != nil {
		return nil, fmt.Errorf("%sの取得に失敗: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	docs := make(map[int64]map[string]any)
	for rows.Next() {
		var (
			id  int64
			raw string
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("%sの読み取りに失敗: %w", table, err)
		}
		doc := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("ドキュメントのデコードに失敗: %w", err)
		}
		docs[id] = doc
	}
	return docs, rows.Err()
}

// Delete はfilterに一致する行を削除する。
func (b *Backend) Delete(ctx context.Context, table string, filter backend.Filter) error {
	if err := checkTable(table); err != nil {
		return err
	}
	where, args, err := whereClause(table, filter)
	if err != nil {
		return err
	}
	if _, err := b.db.ExecContext(ctx, "DELETE FROM "+table+where, args...); err != nil {
		return fmt.Errorf("%sの削除に失敗: %w", table, err)
	}
	return nil
}
