package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ==================== 契约结果 ====================

// RunResult 所有 Agent 输出的统一契约结果
// OK=true 时 Value 可信；OK=false 时 Err/Issues 说明原因
type RunResult[T any] struct {
	OK       bool     `json:"ok"`
	Value    T        `json:"value,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Err      string   `json:"error,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}

// Fail 构造失败结果
func Fail[T any](err string, issues ...string) RunResult[T] {
	return RunResult[T]{OK: false, Err: err, Issues: issues}
}

// Succeed 构造成功结果
func Succeed[T any](value T, warnings ...string) RunResult[T] {
	return RunResult[T]{OK: true, Value: value, Warnings: warnings}
}

// ==================== 声明式 Schema ====================

// 字段类型
const (
	FieldString = "string"
	FieldNumber = "number"
	FieldInt    = "int"
	FieldBool   = "bool"
	FieldObject = "object"
	FieldArray  = "array"
)

// Field 单个字段的形状描述
type Field struct {
	Name     string
	Kind     string
	Required bool
	Enum     []string // 仅 string 有效，闭合枚举
	Min, Max *float64 // 仅数值有效
	Fields   []Field  // Kind=object 的子字段
	Items    *Field   // Kind=array 的元素形状（Name 留空）
}

// Schema 顶层对象的形状
type Schema struct {
	Fields []Field
}

// F64 数值边界辅助
func F64(v float64) *float64 { return &v }

// ==================== 校验入口 ====================

// ValidateContract 调用 producer 并把原始 JSON 按 schema 校验、纠偏成 T
// producer 出错返回 {ok:false,error}；形状不符返回逐字段路径的问题列表；本函数不会 panic
func ValidateContract[T any](name string, schema *Schema, producer func() (json.RawMessage, error)) RunResult[T] {
	raw, err := func() (raw json.RawMessage, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%v", r)
			}
		}()
		return producer()
	}()
	if err != nil {
		return Fail[T](err.Error())
	}

	return ParseContract[T](name, schema, raw)
}

// ParseContract 校验已有的原始 JSON（编排器对最终 Deck 做终检时复用）
func ParseContract[T any](name string, schema *Schema, raw json.RawMessage) RunResult[T] {
	var decoded interface{}
	if err := json.Unmarshal(stripCodeFence(raw), &decoded); err != nil {
		return Fail[T](fmt.Sprintf("%s produced invalid output", name), "$: not valid JSON: "+err.Error())
	}

	obj, ok := decoded.(map[string]interface{})
	if !ok {
		return Fail[T](fmt.Sprintf("%s produced invalid output", name), "$: expected object")
	}

	var issues []string
	coerced := checkObject("", schema.Fields, obj, &issues)
	if len(issues) > 0 {
		return Fail[T](fmt.Sprintf("%s produced invalid output", name), issues...)
	}

	// 纠偏后的 map 重新序列化到目标类型
	buf, err := json.Marshal(coerced)
	if err != nil {
		return Fail[T](fmt.Sprintf("%s produced invalid output", name), "$: "+err.Error())
	}
	var value T
	if err := json.Unmarshal(buf, &value); err != nil {
		return Fail[T](fmt.Sprintf("%s produced invalid output", name), "$: "+err.Error())
	}
	return Succeed(value)
}

// ==================== 形状检查 ====================

// checkObject 逐字段校验，返回纠偏后的对象；问题按字段路径累积
func checkObject(path string, fields []Field, obj map[string]interface{}, issues *[]string) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		fieldPath := f.Name
		if path != "" {
			fieldPath = path + "." + f.Name
		}

		raw, present := obj[f.Name]
		if !present || raw == nil {
			if f.Required {
				*issues = append(*issues, fieldPath+": required field missing")
			}
			continue
		}

		if v, ok := checkValue(fieldPath, f, raw, issues); ok {
			out[f.Name] = v
		}
	}
	return out
}

// checkValue 校验单值并做宽松纠偏（数字字符串转数字、数字转字符串）
func checkValue(path string, f Field, raw interface{}, issues *[]string) (interface{}, bool) {
	switch f.Kind {
	case FieldString:
		s, ok := raw.(string)
		if !ok {
			if n, isNum := raw.(float64); isNum {
				s = strconv.FormatFloat(n, 'f', -1, 64)
			} else {
				*issues = append(*issues, path+": expected string")
				return nil, false
			}
		}
		if len(f.Enum) > 0 && !containsString(f.Enum, s) {
			*issues = append(*issues, fmt.Sprintf("%s: %q not in enum [%s]", path, s, strings.Join(f.Enum, ",")))
			return nil, false
		}
		return s, true

	case FieldNumber, FieldInt:
		n, ok := raw.(float64)
		if !ok {
			if s, isStr := raw.(string); isStr {
				parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					*issues = append(*issues, path+": expected number")
					return nil, false
				}
				n = parsed
			} else {
				*issues = append(*issues, path+": expected number")
				return nil, false
			}
		}
		if f.Min != nil && n < *f.Min {
			*issues = append(*issues, fmt.Sprintf("%s: %v below minimum %v", path, n, *f.Min))
			return nil, false
		}
		if f.Max != nil && n > *f.Max {
			*issues = append(*issues, fmt.Sprintf("%s: %v above maximum %v", path, n, *f.Max))
			return nil, false
		}
		if f.Kind == FieldInt {
			return math.Round(n), true
		}
		return n, true

	case FieldBool:
		b, ok := raw.(bool)
		if !ok {
			*issues = append(*issues, path+": expected bool")
			return nil, false
		}
		return b, true

	case FieldObject:
		obj, ok := raw.(map[string]interface{})
		if !ok {
			*issues = append(*issues, path+": expected object")
			return nil, false
		}
		return checkObject(path, f.Fields, obj, issues), true

	case FieldArray:
		arr, ok := raw.([]interface{})
		if !ok {
			*issues = append(*issues, path+": expected array")
			return nil, false
		}
		if f.Items == nil {
			return arr, true
		}
		out := make([]interface{}, 0, len(arr))
		for i, item := range arr {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if v, ok := checkValue(itemPath, *f.Items, item, issues); ok {
				out = append(out, v)
			}
		}
		return out, true

	default:
		*issues = append(*issues, path+": unknown field kind "+f.Kind)
		return nil, false
	}
}

// ==================== 工具函数 ====================

// stripCodeFence 去掉模型偶尔包在 JSON 外面的 markdown 围栏
func stripCodeFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return []byte(s)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
