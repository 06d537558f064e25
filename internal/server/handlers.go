package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dyike/FinSage/consts"
	"github.com/dyike/FinSage/internal/chat"
	"github.com/dyike/FinSage/internal/news"
	"github.com/dyike/FinSage/internal/portfolio"
	"github.com/dyike/FinSage/internal/service"
	"github.com/dyike/FinSage/models"
)

const completionFailedMsg = "The assistant is unavailable right now."

type portfolioRequest struct {
	Portfolio string `json:"portfolio" binding:"required"`
	Insight   *bool  `json:"insight"`
}

type portfolioResponse struct {
	TotalValue   string                 `json:"total_value"`
	Lines        []models.PortfolioLine `json:"lines"`
	Breakdown    []string               `json:"breakdown"`
	Insight      string                 `json:"insight,omitempty"`
	InsightError string                 `json:"insight_error,omitempty"`
}

type quoteResponse struct {
	Symbol string    `json:"symbol"`
	Price  string    `json:"price"`
	AsOf   time.Time `json:"as_of"`
}

type messageRequest struct {
	Content string `json:"content"`
}

type chatResponse struct {
	SessionID  string           `json:"session_id"`
	Turn       *chat.Turn       `json:"turn,omitempty"`
	Transcript []models.Message `json:"transcript"`
	Error      string           `json:"error,omitempty"`
}

func (s *Server) analyzePortfolio(c *gin.Context) {
	var req portfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": consts.InvalidPortfolioHelp, "detail": err.Error()})
		return
	}

	a := s.assistant()
	result, err := a.AnalyzePortfolio(c.Request.Context(), req.Portfolio)
	if err != nil {
		var perr *portfolio.ParseError
		if errors.As(err, &perr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": consts.InvalidPortfolioHelp, "detail": perr.Error()})
			return
		}
		s.logger.Error().Err(err).Msg("portfolio analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "portfolio analysis failed"})
		return
	}

	resp := portfolioResponse{
		TotalValue: result.TotalValue.StringFixed(2),
		Lines:      result.Lines,
		Breakdown:  result.Breakdown(),
	}
	if req.Insight == nil || *req.Insight {
		insight, err := a.PortfolioInsight(c.Request.Context(), result)
		if err != nil {
			s.logger.Error().Err(err).Msg("portfolio insight failed")
			resp.InsightError = completionFailedMsg
		} else {
			resp.Insight = insight
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getQuote(c *gin.Context) {
	res := s.assistant().Quote(c.Request.Context(), c.Param("symbol"))
	if !res.OK() {
		c.JSON(http.StatusNotFound, gin.H{"error": consts.StockNotFoundReply})
		return
	}
	c.JSON(http.StatusOK, quoteResponse{
		Symbol: res.Value.Symbol,
		Price:  res.Value.Price.StringFixed(2),
		AsOf:   res.Value.AsOf,
	})
}

func periodParam(c *gin.Context) (models.Period, bool) {
	period, err := models.ParsePeriod(c.DefaultQuery("period", consts.DefaultChartPeriod))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return period, true
}

func (s *Server) getHistory(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}
	res := s.assistant().History(c.Request.Context(), c.Param("symbol"), period)
	if !res.OK() {
		c.JSON(http.StatusNotFound, gin.H{"error": "no price data"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbol": c.Param("symbol"), "period": period, "points": res.Value})
}

func (s *Server) getChart(c *gin.Context) {
	period, ok := periodParam(c)
	if !ok {
		return
	}
	png, err := s.assistant().PriceChart(c.Request.Context(), c.Param("symbol"), period)
	if errors.Is(err, service.ErrNoPriceData) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no price data"})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("chart render failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "chart render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) getNews(c *gin.Context) {
	report, err := s.assistant().News(c.Request.Context(), c.Param("symbol"))
	switch {
	case errors.Is(err, news.ErrNoNews):
		c.JSON(http.StatusNotFound, gin.H{"error": consts.NoNewsReply})
	case err != nil:
		s.logger.Error().Err(err).Msg("news sentiment failed")
		body := gin.H{"error": completionFailedMsg}
		if report != nil {
			body["headlines"] = report.Headlines
		}
		c.JSON(http.StatusBadGateway, body)
	default:
		c.JSON(http.StatusOK, report)
	}
}

func (s *Server) createSession(c *gin.Context) {
	session := s.sessions.Create()
	c.JSON(http.StatusCreated, chatResponse{SessionID: session.ID, Transcript: session.Transcript()})
}

func (s *Server) lookupSession(c *gin.Context) (*chat.Session, bool) {
	session, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return session, true
}

func (s *Server) getSession(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, chatResponse{SessionID: session.ID, Transcript: session.Transcript()})
}

func (s *Server) deleteSession(c *gin.Context) {
	if !s.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) postMessage(c *gin.Context) {
	session, ok := s.lookupSession(c)
	if !ok {
		return
	}

	var req messageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	turn, err := s.assistant().Chat(c.Request.Context(), session, req.Content)
	if errors.Is(err, chat.ErrEmptyQuery) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message content is required"})
		return
	}

	resp := chatResponse{SessionID: session.ID, Turn: &turn, Transcript: session.Transcript()}
	if err != nil {
		resp.Error = completionFailedMsg
		c.JSON(http.StatusBadGateway, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
