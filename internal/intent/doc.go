// Package intent 定义动作参数 Schema 与意图的两级表示（Raw/Validated），
// 并提供把自由文本指令转成意图的解析器与确定性的校验器。解析只负责判别
// 协作方输出是结构化意图还是自然语言回答，校验负责默认值、类型转换与
// 签名标记。
package intent
