package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_analyzer/internal/api"
	"stock_analyzer/internal/feature/symbollist/domain/entity"
	"stock_analyzer/internal/feature/symbollist/transport/http/dto"
	"stock_analyzer/internal/platform/logger"
)

// SymbolUsecase は銘柄カタログのユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
}

// SymbolHandler はダッシュボードで選択できる銘柄を返します。
type SymbolHandler struct {
	uc          SymbolUsecase
	defaultCode string
}

// NewSymbolHandler は新しい SymbolHandler を作成します。defaultCode の銘柄に default=true を付けます。
func NewSymbolHandler(uc SymbolUsecase, defaultCode string) *SymbolHandler {
	return &SymbolHandler{uc: uc, defaultCode: entity.NormalizeCode(defaultCode)}
}

// List は表示順に並んだ有効な銘柄の一覧を返します。
// カタログの読み込みに失敗した場合は詳細を隠して500を返します。
//
// エンドポイント例:
// GET /symbols
func (h *SymbolHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	symbols, err := h.uc.ListActiveSymbols(ctx)
	if err != nil {
		slog.Error("failed to list symbols", append(logger.Attrs(ctx), "error", err)...)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "symbol catalog unavailable"})
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{
			Code:    s.Code,
			Name:    s.Name,
			Market:  s.Market,
			Default: s.Code == h.defaultCode,
		})
	}
	c.JSON(http.StatusOK, out)
}
