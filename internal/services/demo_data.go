package services

type demoUser struct {
	Email    string
	Name     string
	Nickname string
	XP       int
	Titles   []string
}

type demoLocation struct {
	Lat     float64
	Lng     float64
	Address string
	City    string
}

type demoSample struct {
	Category    string
	Description string
}

const (
	demoEmailSuffix     = "@barrierfree.local"
	demoTeamName        = "경기도 배리어프리 선구자"
	demoTeamDescription = "경기도 전역의 접근성을 개선하는 시민 모임입니다."
)

var demoUsers = []demoUser{
	{"demo1" + demoEmailSuffix, "김민준", "접근성지킴이", 850, []string{"초보 리포터", "장벽 헌터"}},
	{"demo2" + demoEmailSuffix, "이서연", "배리어프리여왕", 450, []string{"첫 걸음"}},
	{"demo3" + demoEmailSuffix, "박지호", "도시탐험가", 1200, []string{"베테랑", "문제 해결사"}},
}

var demoLocations = []demoLocation{
	{37.2636, 127.0286, "경기 수원시 팔달구 정조로 825", "수원시"},
	{37.2795, 127.0176, "경기 수원시 장안구 경수대로 893", "수원시"},
	{37.2571, 127.0007, "경기 수원시 권선구 세류로 180", "수원시"},
	{37.2981, 127.0553, "경기 수원시 영통구 광교로 107", "수원시"},
	{37.2663, 127.0354, "경기 수원시 팔달구 수원천로 392", "수원시"},
	{37.2883, 127.0391, "경기 수원시 장안구 송죽동 456", "수원시"},
	{37.2514, 127.0155, "경기 수원시 권선구 구운로 1", "수원시"},
	{37.3012, 127.0733, "경기 수원시 영통구 이의동 1325", "수원시"},
	{37.2821, 127.0099, "경기 수원시 장안구 조원동 775", "수원시"},
	{37.2738, 127.0447, "경기 수원시 팔달구 인계동 1117", "수원시"},
	{37.4138, 127.1277, "경기 성남시 분당구 성남대로 801", "성남시"},
	{37.4201, 127.1276, "경기 성남시 분당구 황새울로 200", "성남시"},
	{37.3894, 127.1217, "경기 성남시 수정구 태평로 55", "성남시"},
	{37.4335, 127.1378, "경기 성남시 분당구 정자동 178", "성남시"},
	{37.4491, 127.1458, "경기 성남시 분당구 백현동 541", "성남시"},
	{37.3782, 127.1145, "경기 성남시 중원구 성남대로 997", "성남시"},
	{37.4423, 127.1175, "경기 성남시 분당구 서현동 256", "성남시"},
	{37.3987, 127.1063, "경기 성남시 수정구 신흥동 3378", "성남시"},
	{37.6584, 126.8320, "경기 고양시 덕양구 화정로 82", "고양시"},
	{37.6395, 126.8326, "경기 고양시 일산동구 중앙로 1261", "고양시"},
	{37.6682, 126.7778, "경기 고양시 일산서구 주엽동 75", "고양시"},
	{37.6913, 126.8354, "경기 고양시 일산동구 장항동 869", "고양시"},
	{37.6590, 126.8930, "경기 고양시 덕양구 원흥동 633", "고양시"},
	{37.6557, 126.7682, "경기 고양시 일산서구 탄현동 1548", "고양시"},
	{37.6729, 126.8456, "경기 고양시 일산동구 백석동 1256", "고양시"},
	{37.4563, 126.7052, "경기 부천시 원미구 중동로 198", "부천시"},
	{37.5035, 126.7660, "경기 부천시 소사구 경인로 736", "부천시"},
	{37.4849, 126.7831, "경기 부천시 원미구 상동 546", "부천시"},
	{37.4981, 126.7196, "경기 부천시 오정구 오정로 272", "부천시"},
	{37.5134, 126.7453, "경기 부천시 소사구 소사로 482", "부천시"},
	{37.4891, 126.7234, "경기 부천시 원미구 춘의동 192", "부천시"},
	{37.3219, 126.8309, "경기 안산시 단원구 광덕대로 195", "안산시"},
	{37.3064, 126.8585, "경기 안산시 상록구 안산대학로 155", "안산시"},
	{37.2914, 126.8204, "경기 안산시 단원구 원곡동 847", "안산시"},
	{37.3375, 126.8572, "경기 안산시 상록구 본오동 701", "안산시"},
	{37.3158, 126.8413, "경기 안산시 단원구 고잔동 541", "안산시"},
	{37.2411, 127.1776, "경기 용인시 기흥구 중부대로 242", "용인시"},
	{37.2747, 127.2093, "경기 용인시 수지구 풍덕천로 152", "용인시"},
	{37.1919, 127.0777, "경기 용인시 처인구 금학로 209", "용인시"},
	{37.2574, 127.1842, "경기 용인시 기흥구 신갈동 231", "용인시"},
	{37.3012, 127.2547, "경기 용인시 수지구 죽전동 1330", "용인시"},
	{37.6385, 127.2146, "경기 남양주시 다산중앙로 20길 25", "남양주시"},
	{37.6865, 127.2048, "경기 남양주시 진접읍 금강로 1095", "남양주시"},
	{37.6577, 127.0966, "경기 남양주시 별내동 192", "남양주시"},
	{37.7458, 127.2731, "경기 남양주시 화도읍 묵현리 356", "남양주시"},
	{37.1990, 126.8312, "경기 화성시 봉담읍 동화길 37", "화성시"},
	{37.2031, 127.0017, "경기 화성시 동탄대로 636", "화성시"},
	{37.2225, 126.9841, "경기 화성시 병점중앙로 140", "화성시"},
	{37.1564, 126.7012, "경기 화성시 향남읍 토성로 123", "화성시"},
	{37.7381, 127.0478, "경기 의정부시 평화로 525", "의정부시"},
	{37.3947, 126.9218, "경기 안양시 만안구 문화광장로 36", "안양시"},
	{37.3799, 126.8030, "경기 시흥시 중심상가로 59", "시흥시"},
	{37.4194, 126.8743, "경기 광명시 오리로 613", "광명시"},
	{37.7380, 127.0336, "경기 의정부시 의정부동 234", "의정부시"},
}

var barrierSamples = []demoSample{
	{"no_ramp", "지하철역 입구에 경사로가 없어 휠체어 이용이 어렵습니다."},
	{"blocked_sidewalk", "상가 통로가 좁아서 휠체어나 유모차 통행이 불편합니다."},
	{"restroom_issue", "장애인 화장실이 물건 창고로 사용되고 있습니다."},
	{"damaged_ramp", "경사로가 파손되어 이용이 어렵습니다."},
	{"damaged_tactile_paving", "점자 블록이 파손되어 시각장애인이 이용하기 어렵습니다."},
	{"elevator_issue", "엘리베이터가 고장났는데 수리가 안 되고 있습니다."},
	{"signage_issue", "점자 안내판이 파손되어 시각장애인이 이용하기 어렵습니다."},
	{"high_threshold", "출입구 턱이 높아 휠체어 진입이 어렵습니다."},
}

var praiseSamples = []demoSample{
	{"good_ramp", "새로 설치된 경사로가 매우 편리합니다!"},
	{"clean_restroom", "장애인 화장실이 깨끗하고 넓어서 좋습니다."},
	{"good_voice_guide", "음성 안내가 잘 되어 있어 시각장애인도 쉽게 이용할 수 있습니다."},
	{"friendly_staff", "직원분이 매우 친절하게 도와주셨습니다."},
	{"wide_passage", "통로가 넓어서 휠체어 이동이 편리합니다."},
}
