// Package handler 按业务域划分的 HTTP 处理器，具体实现在各子包中
package handler
