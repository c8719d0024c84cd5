package logger

import (
	"log/slog"
)

func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func TenantID(id any) slog.Attr {
	return anyAttr("tenant_id", id)
}

func SubscriptionID(id any) slog.Attr {
	return anyAttr("subscription_id", id)
}

func PlanID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("plan_id", id)
}

func GatewayCustomerID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("gateway_customer_id", id)
}

func GatewaySubscriptionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("gateway_subscription_id", id)
}

func PaymentMethod(method string) slog.Attr {
	return slog.String("payment_method", method)
}

// Transition logs a status change as "FROM->TO".
func Transition(from, to string) slog.Attr {
	return slog.String("transition", from+"->"+to)
}

func RequestID(id any) slog.Attr {
	return anyAttr("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

func anyAttr(key string, v any) slog.Attr {
	if v == nil {
		return slog.Attr{}
	}
	return slog.Any(key, v)
}
