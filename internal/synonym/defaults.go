package synonym

// defaultAliases is the built-in alias table. Within a field, earlier
// aliases take priority.
var defaultAliases = map[Field][]string{
	StayDate: {
		"date", "trans_date", "posting_date", "傳票日期",
		"stay_date", "business_date", "日期", "營業日期", "交易日期", "帳務日期", "入住日期", "住宿日期",
	},
	BookingDate: {
		"booking_date", "book_date", "reservation_date", "created_date", "訂房日期", "預訂日期",
	},
	RoomsSold: {
		"rooms_sold", "sold_rooms", "間夜", "房晚",
		"售房合計", "總住房數", "roomsold", "rooms sold", "room_nights",
	},
	RoomsAvailable: {
		"rooms_avail", "available_rooms", "可售", "供應房晚",
		"可售房數", "rooms available", "room_supply", "rooms_available",
	},
	RoomRevenue: {
		"room_revenue", "rm_rev", "房租收入",
		"總房租", "roomrev", "rmrevenue", "房價收入",
	},
	FBRevenue: {
		"fb_revenue", "f&b", "beverage", "餐飲收入", "餐飲營業額",
	},
	OtherRevenue: {
		"other_revenue", "misc_revenue", "其他收入", "其他營收",
	},
	Channel: {
		"channel", "ota", "booking_source", "來源", "通路",
	},
	RatePlan: {
		"rate_plan", "market_segment", "plan", "方案", "價格方案",
	},
	MarketSegment: {
		"segment", "market", "市場", "客群", "來源別",
	},
	RoomType: {
		"room_type", "roomtype", "房型", "房間類型",
	},
	Cancelled: {
		"cancelled", "canceled", "is_cancelled", "cancel_flag", "取消",
	},
	NoShow: {
		"no_show", "noshow", "no-show", "is_no_show", "未到",
	},
	OutOfOrder: {
		"out_of_order", "ooo", "故障房",
	},
	HouseUse: {
		"house_use", "hus", "自用房",
	},
	Complimentary: {
		"complimentary", "comp", "招待房",
	},
	OverbookHold: {
		"overbook_hold", "mbk", "market_block", "超訂保留",
	},
	HouseUseRevenue: {
		"house_use_revenue", "hus_revenue",
	},
	ComplimentaryRevenue: {
		"complimentary_revenue", "comp_revenue",
	},
}
