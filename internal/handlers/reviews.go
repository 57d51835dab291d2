package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"dental-clinic-server/internal/config"
	"dental-clinic-server/internal/utils"
)

const placesDetailsURL = "https://maps.googleapis.com/maps/api/place/details/json"

// ReviewsHandler proxies public clinic reviews from the Google Places API.
type ReviewsHandler struct {
	Cfg    *config.Config
	Client *http.Client
}

// NewReviewsHandler creates a new ReviewsHandler.
func NewReviewsHandler(cfg *config.Config) *ReviewsHandler {
	return &ReviewsHandler{
		Cfg:    cfg,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

type googleReview struct {
	AuthorName              string `json:"author_name"`
	ProfilePhotoURL         string `json:"profile_photo_url"`
	Rating                  int    `json:"rating"`
	RelativeTimeDescription string `json:"relative_time_description"`
	Text                    string `json:"text"`
	Time                    int64  `json:"time"`
}

type googlePlaceDetails struct {
	Result struct {
		Name             string         `json:"name"`
		Rating           float64        `json:"rating"`
		UserRatingsTotal int            `json:"user_ratings_total"`
		Reviews          []googleReview `json:"reviews"`
	} `json:"result"`
	Status string `json:"status"`
}

// Review is a public review shaped for the marketing site.
type Review struct {
	ID          string `json:"id"`
	AuthorName  string `json:"authorName"`
	AuthorPhoto string `json:"authorPhoto,omitempty"`
	Rating      int    `json:"rating"`
	Text        string `json:"text"`
	Date        string `json:"date"`
	Timestamp   int64  `json:"timestamp"`
}

// ReviewsResponse is the review listing returned to the marketing site.
type ReviewsResponse struct {
	BusinessName  string   `json:"businessName"`
	AverageRating float64  `json:"averageRating"`
	TotalReviews  int      `json:"totalReviews"`
	Reviews       []Review `json:"reviews"`
}

// GetReviews fetches and reshapes the clinic's Google reviews.
func (h *ReviewsHandler) GetReviews(c *gin.Context) {
	if h.Cfg.GooglePlaces.APIKey == "" || h.Cfg.GooglePlaces.PlaceID == "" {
		utils.InternalServerError(c, "Google Places API not configured")
		return
	}

	params := url.Values{}
	params.Set("place_id", h.Cfg.GooglePlaces.PlaceID)
	params.Set("fields", "name,rating,user_ratings_total,reviews")
	params.Set("key", h.Cfg.GooglePlaces.APIKey)
	params.Set("language", "id")

	resp, err := h.Client.Get(placesDetailsURL + "?" + params.Encode())
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch reviews from Google: "+err.Error())
		return
	}
	defer resp.Body.Close()

	var details googlePlaceDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		utils.InternalServerError(c, "Failed to decode Google response: "+err.Error())
		return
	}

	if details.Status != "OK" {
		utils.BadRequest(c, "Failed to fetch reviews from Google: "+details.Status)
		return
	}

	reviews := make([]Review, 0, len(details.Result.Reviews))
	for _, r := range details.Result.Reviews {
		reviews = append(reviews, Review{
			ID:          fmt.Sprintf("%s-%d", r.AuthorName, r.Time),
			AuthorName:  r.AuthorName,
			AuthorPhoto: r.ProfilePhotoURL,
			Rating:      r.Rating,
			Text:        r.Text,
			Date:        r.RelativeTimeDescription,
			Timestamp:   r.Time,
		})
	}

	utils.Success(c, "Reviews fetched successfully", ReviewsResponse{
		BusinessName:  details.Result.Name,
		AverageRating: details.Result.Rating,
		TotalReviews:  details.Result.UserRatingsTotal,
		Reviews:       reviews,
	})
}
