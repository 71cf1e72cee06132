package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/DanielKrohn/InkPress/app/models"
	"github.com/DanielKrohn/InkPress/internal/pkg/cache"
	"github.com/DanielKrohn/InkPress/internal/pkg/database"
)

const (
	CacheKeyUsersTotal     = "statistics:users:total"
	CacheKeySubsActive     = "statistics:subscriptions:active"
	CacheKeyUsersSuspended = "statistics:users:suspended"
	CacheKeyEventsDaily    = "statistics:webhook_events:daily:%s" // Format with date YYYY-MM-DD
	CacheExpiration        = 30 * time.Minute
)

// StatisticsData holds the aggregate numbers for the admin dashboard
type StatisticsData struct {
	TotalUsers          int `json:"total_users"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	SuspendedUsers      int `json:"suspended_users"`
	EventsToday         int `json:"events_today"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache reports whether the cached aggregates are stale
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cached aggregates when they are stale
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// UpdateStatisticsCache recounts all aggregates and writes them to the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting users: %v", err)
		return err
	}

	var activeSubs int64
	if err := db.Model(&models.Subscription{}).Where("status = ?", models.SubscriptionStatusActive).Count(&activeSubs).Error; err != nil {
		log.Printf("Error counting active subscriptions: %v", err)
		return err
	}

	var suspendedUsers int64
	if err := db.Model(&models.User{}).Where("subscription_status = ?", models.SubscriptionStatusSuspended).Count(&suspendedUsers).Error; err != nil {
		log.Printf("Error counting suspended users: %v", err)
		return err
	}

	today := time.Now().Format("2006-01-02")
	var eventsToday int64
	if err := db.Model(&models.BillingWebhookEvent{}).Where("DATE(created_at) = ?", today).Count(&eventsToday).Error; err != nil {
		log.Printf("Error counting today's webhook events: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsersTotal, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeySubsActive, strconv.FormatInt(activeSubs, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyUsersSuspended, strconv.FormatInt(suspendedUsers, 10), CacheExpiration); err != nil {
		return err
	}
	dailyKey := fmt.Sprintf(CacheKeyEventsDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(eventsToday, 10), CacheExpiration); err != nil {
		return err
	}

	return nil
}

// GetStatistics returns the cached aggregates, refreshing them when stale
func GetStatistics() StatisticsData {
	UpdateCacheIfNeeded()

	data := StatisticsData{}
	data.TotalUsers = readCachedInt(CacheKeyUsersTotal)
	data.ActiveSubscriptions = readCachedInt(CacheKeySubsActive)
	data.SuspendedUsers = readCachedInt(CacheKeyUsersSuspended)
	today := time.Now().Format("2006-01-02")
	data.EventsToday = readCachedInt(fmt.Sprintf(CacheKeyEventsDaily, today))
	return data
}

func readCachedInt(key string) int {
	val, err := cache.Get(key)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}
