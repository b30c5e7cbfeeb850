/*
 * @Description: 原生 SQL 结果到结构体的反射映射
 * @Author: 安知鱼
 * @Date: 2026-03-07 10:26:50
 * @LastEditTime: 2026-04-10 17:03:22
 * @LastEditors: 安知鱼
 */
package ent

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"entgo.io/ent/dialect"
)

// QueryRaw 执行原生 SQL 并逐行映射为 T。
//
// 查询使用 ? 占位符，PostgreSQL 下会重写为 $n。T 为结构体或结构体指针时按 db 标签匹配列名，
// 没有标签时使用字段名的 snake_case，大小写不敏感；未匹配的列被忽略，NULL 映射为零值。
// T 不是结构体时取第一列。
func QueryRaw[T any](ctx context.Context, ex Executor, dialectName, query string, args ...any) ([]T, error) {
	rows, err := ex.QueryContext(ctx, Rebind(dialectName, query), args...)
	if err != nil {
		return nil, fmt.Errorf("执行原生查询失败: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("读取结果列失败: %w", err)
	}

	var zero T
	structType := reflect.TypeOf(&zero).Elem()
	isPtr := structType.Kind() == reflect.Pointer && structType.Elem().Kind() == reflect.Struct
	if isPtr {
		structType = structType.Elem()
	}
	isStruct := structType.Kind() == reflect.Struct && structType != timeType

	var fieldIndex [][]int
	if isStruct {
		fields := structFields(structType)
		fieldIndex = make([][]int, len(columns))
		for i, col := range columns {
			fieldIndex[i] = fields[strings.ToLower(col)]
		}
	}

	results := make([]T, 0)
	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("扫描结果行失败: %w", err)
		}

		var item T
		target := reflect.ValueOf(&item).Elem()
		if isStruct && isPtr {
			target.Set(reflect.New(structType))
			target = target.Elem()
		}
		if isStruct {
			for i, idx := range fieldIndex {
				if idx == nil {
					continue
				}
				if err := assignValue(target.FieldByIndex(idx), values[i]); err != nil {
					return nil, fmt.Errorf("映射列 '%s' 失败: %w", columns[i], err)
				}
			}
		} else if len(values) > 0 {
			if err := assignValue(target, values[0]); err != nil {
				return nil, fmt.Errorf("映射列 '%s' 失败: %w", columns[0], err)
			}
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历结果集失败: %w", err)
	}
	return results, nil
}

// Rebind 把 ? 占位符改写为目标方言的形式，引号内的 ? 保持不变
func Rebind(dialectName, query string) string {
	if dialectName != dialect.Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"':
			quote = r
		case r == '?':
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
	timeLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05.999999999", "2006-01-02 15:04:05", "2006-01-02"}
)

// reflect.Type -> map[string][]int
var fieldCache sync.Map

// structFields 返回小写列名到字段索引的映射，包含匿名嵌入结构体的字段
func structFields(t reflect.Type) map[string][]int {
	if cached, ok := fieldCache.Load(t); ok {
		return cached.(map[string][]int)
	}
	fields := make(map[string][]int)
	collectFields(t, nil, fields)
	fieldCache.Store(t, fields)
	return fields
}

func collectFields(t reflect.Type, parent []int, out map[string][]int) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		idx := append(append([]int(nil), parent...), i)

		tag := f.Tag.Get("db")
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" && f.Type.Kind() == reflect.Struct && f.Type != timeType {
			collectFields(f.Type, idx, out)
			continue
		}
		if !f.IsExported() {
			continue
		}
		name := strings.Split(tag, ",")[0]
		if name == "" {
			name = toSnakeCase(f.Name)
		}
		key := strings.ToLower(name)
		if _, exists := out[key]; !exists {
			out[key] = idx
		}
	}
}

// toSnakeCase 把 RatingCount 转为 rating_count，连续大写视为一个单词 (OwnerID -> owner_id)
func toSnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// assignValue 把驱动返回的值转换后写入字段
func assignValue(field reflect.Value, src any) error {
	if !field.CanSet() {
		return fmt.Errorf("字段不可写")
	}
	if src == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if reflect.PointerTo(field.Type()).Implements(scannerType) {
		return field.Addr().Interface().(sql.Scanner).Scan(src)
	}

	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := assignValue(elem.Elem(), src); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if b, ok := src.([]byte); ok {
		src = string(b)
	}

	if field.Type() == timeType {
		t, err := toTime(src)
		if err != nil {
			return err
		}
		field.Set(reflect.ValueOf(t))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		switch v := src.(type) {
		case string:
			field.SetString(v)
		case time.Time:
			field.SetString(v.Format(time.RFC3339))
		default:
			field.SetString(fmt.Sprint(v))
		}
	case reflect.Bool:
		switch v := src.(type) {
		case bool:
			field.SetBool(v)
		case int64:
			field.SetBool(v != 0)
		case string:
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return err
			}
			field.SetBool(parsed)
		default:
			return fmt.Errorf("无法将 %T 转换为 bool", src)
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := toInt64(src)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("负数 %d 无法写入无符号字段", n)
		}
		field.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		f, err := toFloat64(src)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	default:
		v := reflect.ValueOf(src)
		if !v.Type().ConvertibleTo(field.Type()) {
			return fmt.Errorf("无法将 %T 转换为 %s", src, field.Type())
		}
		field.Set(v.Convert(field.Type()))
	}
	return nil
}

func toInt64(src any) (int64, error) {
	switch v := src.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("无法将 '%s' 转换为整数", v)
		}
		return int64(f), nil
	default:
		return 0, fmt.Errorf("无法将 %T 转换为整数", src)
	}
}

func toFloat64(src any) (float64, error) {
	switch v := src.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("无法将 %T 转换为浮点数", src)
	}
}

func toTime(src any) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.Unix(v, 0), nil
	case string:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("无法解析时间 '%s'", v)
	default:
		return time.Time{}, fmt.Errorf("无法将 %T 转换为时间", src)
	}
}
